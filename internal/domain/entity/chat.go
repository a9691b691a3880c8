package entity

import (
	"maps"
	"time"
)

// ChatMember is the denormalized view of a chat participant.
type ChatMember struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// Chat is a conversation between marketplace users.
type Chat struct {
	ID            string                `json:"id"`
	Members       []string              `json:"members"`
	MembersData   map[string]ChatMember `json:"membersData"`
	UnreadCount   map[string]int        `json:"unreadCount"`
	LastMessage   string                `json:"lastMessage"`
	LastMessageAt time.Time             `json:"lastMessageAt"`
	OrderID       string                `json:"orderId,omitempty"`
}

// HasMember reports whether uid takes part in the chat.
func (c *Chat) HasMember(uid string) bool {
	for _, m := range c.Members {
		if m == uid {
			return true
		}
	}

	return false
}

// Counterparts returns every member except uid.
func (c *Chat) Counterparts(uid string) []string {
	out := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		if m != uid {
			out = append(out, m)
		}
	}

	return out
}

// Unread returns the unread message count for uid.
func (c *Chat) Unread(uid string) int {
	return c.UnreadCount[uid]
}

// Clone returns a deep copy of the chat.
func (c Chat) Clone() Chat {
	c.Members = append([]string(nil), c.Members...)
	c.MembersData = maps.Clone(c.MembersData)
	c.UnreadCount = maps.Clone(c.UnreadCount)

	return c
}

// Message is a single chat entry.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
