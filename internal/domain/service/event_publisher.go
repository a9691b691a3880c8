package service

import (
	"context"
)

// MessageEvent is published after a chat message is stored so the notifier
// can push it to the recipients' devices.
type MessageEvent struct {
	RequestID    string   `json:"request_id,omitempty"` // For distributed tracing
	ChatID       string   `json:"chat_id"`
	MessageID    string   `json:"message_id"`
	SenderID     string   `json:"sender_id"`
	SenderName   string   `json:"sender_name"`
	Text         string   `json:"text"`
	RecipientIDs []string `json:"recipient_ids"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishMessageEvent publishes a message event for async processing
	PublishMessageEvent(ctx context.Context, event *MessageEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
