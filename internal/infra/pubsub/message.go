package pubsub

import (
	"encoding/base64"
	"encoding/json"

	"harbor/internal/domain/service"

	"github.com/pkg/errors"
)

// PushMessage is the envelope Pub/Sub uses when pushing to HTTP endpoints
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// messageAttributes are attached to every published event for filtering and tracing
func messageAttributes(event *service.MessageEvent) map[string]string {
	attributes := map[string]string{
		"chat_id":    event.ChatID,
		"message_id": event.MessageID,
		"sender_id":  event.SenderID,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}

// DecodeEvent extracts the message event carried by a push envelope.
// The request id attribute fills in a missing RequestID.
func (m *PushMessage) DecodeEvent() (*service.MessageEvent, error) {
	data, err := base64.StdEncoding.DecodeString(m.Message.Data)
	if err != nil {
		return nil, errors.Wrap(err, "decode push message data")
	}

	var event service.MessageEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, errors.Wrap(err, "unmarshal message event")
	}

	if event.RequestID == "" {
		event.RequestID = m.Message.Attributes["request_id"]
	}

	if event.ChatID == "" || event.MessageID == "" {
		return nil, errors.New("message event is missing chat or message id")
	}

	return &event, nil
}
