package state

import (
	"maps"
	"slices"

	"harbor/internal/domain/entity"
)

func reduceChat(s ChatState, a Action) ChatState {
	switch a := a.(type) {
	case FetchChatsRequest, FetchMessagesRequest, SendMessageRequest, OpenChatRequest, MarkMessagesAsReadRequest:
		s.Async = requested()
	case FetchChatsSuccess:
		s.Async = succeeded()
		s.Chats = cloneChats(a.Chats)
	case FetchMessagesSuccess:
		s.Async = succeeded()
		s.Messages = withMessages(s.Messages, a.ChatID, slices.Clone(a.Messages))
	case SendMessageSuccess:
		s.Async = succeeded()
		s.Messages = withMessages(s.Messages, a.Message.ChatID, mergeMessages(s.Messages[a.Message.ChatID], a.Message))
	case OpenChatSuccess:
		s.Async = succeeded()
		s.Chats = upsertChat(s.Chats, a.Chat)
	case MarkMessagesAsReadSuccess:
		s.Async = succeeded()
		s = markRead(s, a.ChatID, a.UserID)
	case FetchChatsFailure:
		s.Async = failed(a)
	case FetchMessagesFailure:
		s.Async = failed(a)
	case SendMessageFailure:
		s.Async = failed(a)
	case OpenChatFailure:
		s.Async = failed(a)
	case MarkMessagesAsReadFailure:
		s.Async = failed(a)
	case SetSelectedChatID:
		s.SelectedChatID = a.ChatID
	case ResetSelectedChatID:
		s.SelectedChatID = ""
	case UpdateChatRealtime:
		s.Chats = cloneChats(a.Chats)
	case UpdateMessagesRealtime:
		s.Messages = withMessages(s.Messages, a.ChatID, mergeMessages(s.Messages[a.ChatID], a.Messages...))
	case NewMessageReceived:
		s = receiveMessage(s, a.Message, a.ViewerID)
	}

	return s
}

func cloneChats(chats []entity.Chat) []entity.Chat {
	out := make([]entity.Chat, len(chats))
	for i := range chats {
		out[i] = chats[i].Clone()
	}

	return out
}

func upsertChat(chats []entity.Chat, chat entity.Chat) []entity.Chat {
	out := slices.Clone(chats)
	for i := range out {
		if out[i].ID == chat.ID {
			out[i] = chat.Clone()

			return out
		}
	}

	return append(out, chat.Clone())
}

// withMessages returns a copy of byChat with chatID set to msgs.
func withMessages(byChat map[string][]entity.Message, chatID string, msgs []entity.Message) map[string][]entity.Message {
	out := make(map[string][]entity.Message, len(byChat)+1)
	maps.Copy(out, byChat)
	out[chatID] = msgs

	return out
}

// mergeMessages upserts incoming into existing by message id and keeps the
// result ordered by timestamp. existing is not modified.
func mergeMessages(existing []entity.Message, incoming ...entity.Message) []entity.Message {
	out := slices.Clone(existing)

	for _, msg := range incoming {
		idx := slices.IndexFunc(out, func(m entity.Message) bool { return m.ID == msg.ID })
		if idx >= 0 {
			out[idx] = msg
		} else {
			out = append(out, msg)
		}
	}

	slices.SortStableFunc(out, func(a, b entity.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return out
}

func receiveMessage(s ChatState, msg entity.Message, viewerID string) ChatState {
	existing := s.Messages[msg.ChatID]
	if slices.ContainsFunc(existing, func(m entity.Message) bool { return m.ID == msg.ID }) {
		return s
	}

	s.Messages = withMessages(s.Messages, msg.ChatID, mergeMessages(existing, msg))

	idx := slices.IndexFunc(s.Chats, func(c entity.Chat) bool { return c.ID == msg.ChatID })
	if idx < 0 {
		return s
	}

	chat := s.Chats[idx].Clone()
	if !msg.Timestamp.Before(chat.LastMessageAt) {
		chat.LastMessage = msg.Text
		chat.LastMessageAt = msg.Timestamp
	}
	if viewerID != "" && msg.SenderID != viewerID && msg.ChatID != s.SelectedChatID {
		if chat.UnreadCount == nil {
			chat.UnreadCount = map[string]int{}
		}
		chat.UnreadCount[viewerID]++
	}

	s.Chats = slices.Clone(s.Chats)
	s.Chats[idx] = chat

	return s
}

func markRead(s ChatState, chatID, uid string) ChatState {
	if idx := slices.IndexFunc(s.Chats, func(c entity.Chat) bool { return c.ID == chatID }); idx >= 0 {
		chat := s.Chats[idx].Clone()
		if chat.UnreadCount == nil {
			chat.UnreadCount = map[string]int{}
		}
		chat.UnreadCount[uid] = 0

		s.Chats = slices.Clone(s.Chats)
		s.Chats[idx] = chat
	}

	if msgs, ok := s.Messages[chatID]; ok {
		updated := slices.Clone(msgs)
		for i := range updated {
			if updated[i].SenderID != uid {
				updated[i].Read = true
			}
		}
		s.Messages = withMessages(s.Messages, chatID, updated)
	}

	return s
}
