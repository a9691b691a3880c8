package firebase

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"harbor/internal/domain/constants"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/errors"
)

type chatRepository struct {
	fs *firestore.Client
}

// NewChatRepository stores chats with their messages as a subcollection.
func NewChatRepository(c *Clients) repository.ChatRepository {
	return &chatRepository{fs: c.Firestore}
}

func (r *chatRepository) chats() *firestore.CollectionRef {
	return r.fs.Collection(constants.CollectionChats)
}

func (r *chatRepository) messages(chatID string) *firestore.CollectionRef {
	return r.chats().Doc(chatID).Collection(constants.CollectionMessages)
}

func (r *chatRepository) memberQuery(uid string) firestore.Query {
	return r.chats().Where("members", "array-contains", uid)
}

func (r *chatRepository) FindByMember(ctx context.Context, uid string) ([]entity.Chat, error) {
	snaps, err := r.memberQuery(uid).Documents(ctx).GetAll()
	if err != nil {
		return nil, gatewayError(err, "find chats")
	}

	return decodeChats(snaps)
}

func decodeChats(snaps []*firestore.DocumentSnapshot) ([]entity.Chat, error) {
	chats := make([]entity.Chat, 0, len(snaps))
	for _, snap := range snaps {
		var d chatDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, errors.Wrapf(err, "decode chat %s", snap.Ref.ID)
		}
		chats = append(chats, chatFromDoc(snap.Ref.ID, d))
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastMessageAt.After(chats[j].LastMessageAt)
	})

	return chats, nil
}

func (r *chatRepository) FindByID(ctx context.Context, id string) (*entity.Chat, error) {
	snap, err := r.chats().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, errors.WithStack(repository.ErrChatNotFound)
	}
	if err != nil {
		return nil, gatewayError(err, "get chat "+id)
	}

	var d chatDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, errors.Wrapf(err, "decode chat %s", id)
	}
	chat := chatFromDoc(id, d)

	return &chat, nil
}

func (r *chatRepository) FindBetween(ctx context.Context, a, b string) (*entity.Chat, error) {
	chats, err := r.FindByMember(ctx, a)
	if err != nil {
		return nil, err
	}

	for i := range chats {
		if len(chats[i].Members) == 2 && chats[i].HasMember(b) {
			return &chats[i], nil
		}
	}

	return nil, errors.WithStack(repository.ErrChatNotFound)
}

func (r *chatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	_, err := r.chats().Doc(chat.ID).Create(ctx, chatToDoc(chat))

	return gatewayError(err, "create chat "+chat.ID)
}

func (r *chatRepository) Messages(ctx context.Context, chatID string) ([]entity.Message, error) {
	snaps, err := r.messages(chatID).OrderBy("timestamp", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, gatewayError(err, "list messages")
	}

	msgs := make([]entity.Message, 0, len(snaps))
	for _, snap := range snaps {
		msg, err := decodeMessage(chatID, snap)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}

func decodeMessage(chatID string, snap *firestore.DocumentSnapshot) (entity.Message, error) {
	var d messageDoc
	if err := snap.DataTo(&d); err != nil {
		return entity.Message{}, errors.Wrapf(err, "decode message %s", snap.Ref.ID)
	}

	return messageFromDoc(chatID, snap.Ref.ID, d), nil
}

func (r *chatRepository) AddMessage(ctx context.Context, msg *entity.Message) error {
	chatRef := r.chats().Doc(msg.ChatID)
	msgRef := r.messages(msg.ChatID).Doc(msg.ID)

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(chatRef)
		if err != nil {
			return err
		}

		var d chatDoc
		if err := snap.DataTo(&d); err != nil {
			return errors.Wrapf(err, "decode chat %s", msg.ChatID)
		}

		if err := tx.Create(msgRef, messageToDoc(msg)); err != nil {
			return err
		}

		updates := []firestore.Update{
			{Path: "lastMessage", Value: msg.Text},
			{Path: "lastMessageAt", Value: msg.Timestamp},
		}
		for _, uid := range d.Members {
			if uid != msg.SenderID {
				updates = append(updates, firestore.Update{
					FieldPath: firestore.FieldPath{"unreadCount", uid},
					Value:     firestore.Increment(1),
				})
			}
		}

		return tx.Update(chatRef, updates)
	})
	if isNotFound(err) {
		return errors.WithStack(repository.ErrChatNotFound)
	}

	return gatewayError(err, "add message")
}

func (r *chatRepository) MarkRead(ctx context.Context, chatID, uid string) error {
	_, err := r.chats().Doc(chatID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCount", uid}, Value: 0},
	})
	if isNotFound(err) {
		return errors.WithStack(repository.ErrChatNotFound)
	}
	if err != nil {
		return gatewayError(err, "reset unread count")
	}

	unread, err := r.messages(chatID).Where("read", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return gatewayError(err, "list unread messages")
	}

	bw := r.fs.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(unread))

	for _, snap := range unread {
		sender, err := snap.DataAt("senderId")
		if err != nil || sender == uid {
			continue
		}

		job, err := bw.Update(snap.Ref, []firestore.Update{{Path: "read", Value: true}})
		if err != nil {
			bw.End()

			return gatewayError(err, "mark message read")
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return gatewayError(err, "mark message read")
		}
	}

	return nil
}

func (r *chatRepository) WatchChats(ctx context.Context, uid string, fn func([]entity.Chat)) error {
	it := r.memberQuery(uid).Snapshots(ctx)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if err != nil {
			return watchError(ctx, err, "watch chats")
		}

		snaps, err := qs.Documents.GetAll()
		if err != nil {
			return watchError(ctx, err, "read chats snapshot")
		}

		chats, err := decodeChats(snaps)
		if err != nil {
			return err
		}

		fn(chats)
	}
}

func (r *chatRepository) WatchMessages(ctx context.Context, chatID string, fn func(repository.MessageBatch)) error {
	it := r.messages(chatID).OrderBy("timestamp", firestore.Asc).Snapshots(ctx)
	defer it.Stop()

	initial := true

	for {
		qs, err := it.Next()
		if err != nil {
			return watchError(ctx, err, "watch messages")
		}

		batch := repository.MessageBatch{Initial: initial}
		for _, change := range qs.Changes {
			msg, err := decodeMessage(chatID, change.Doc)
			if err != nil {
				return err
			}

			switch change.Kind {
			case firestore.DocumentAdded:
				batch.Added = append(batch.Added, msg)
			case firestore.DocumentModified:
				batch.Modified = append(batch.Modified, msg)
			case firestore.DocumentRemoved:
			}
		}

		if initial || len(batch.Added) > 0 || len(batch.Modified) > 0 {
			fn(batch)
		}
		initial = false
	}
}

// watchError reports nil once the watch was cancelled by its owner.
func watchError(ctx context.Context, err error, op string) error {
	if ctx.Err() != nil || errors.Is(err, iterator.Done) {
		return nil
	}

	return gatewayError(err, op)
}
