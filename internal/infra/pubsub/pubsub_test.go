package pubsub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"harbor/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocalHTTPPublisher_PostsPushEnvelope(t *testing.T) {
	var (
		received  PushMessage
		requestID string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	event := &service.MessageEvent{
		RequestID:    "req-1",
		ChatID:       "c1",
		MessageID:    "m1",
		SenderID:     "u1",
		SenderName:   "Ann",
		Text:         "hello",
		RecipientIDs: []string{"u2"},
	}

	publisher := NewLocalHTTPPublisher(srv.URL, discardLogger())
	require.NoError(t, publisher.PublishMessageEvent(context.Background(), event))

	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "m1", received.Message.MessageID)
	assert.Equal(t, "c1", received.Message.Attributes["chat_id"])

	decoded, err := received.DecodeEvent()
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestLocalHTTPPublisher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	publisher := NewLocalHTTPPublisher(srv.URL, discardLogger())
	err := publisher.PublishMessageEvent(context.Background(), &service.MessageEvent{ChatID: "c1", MessageID: "m1"})
	assert.ErrorContains(t, err, "500")
}

func TestPushMessage_DecodeEvent(t *testing.T) {
	var msg PushMessage
	msg.Message.Data = "not base64!"
	_, err := msg.DecodeEvent()
	require.Error(t, err)

	// {"chat_id":"c1","message_id":"m1"}
	msg.Message.Data = "eyJjaGF0X2lkIjoiYzEiLCJtZXNzYWdlX2lkIjoibTEifQ=="
	msg.Message.Attributes = map[string]string{"request_id": "from-attr"}
	event, err := msg.DecodeEvent()
	require.NoError(t, err)
	assert.Equal(t, "from-attr", event.RequestID)

	// {"chat_id":"c1"}
	msg.Message.Data = "eyJjaGF0X2lkIjoiYzEifQ=="
	_, err = msg.DecodeEvent()
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	publisher := NewNoopPublisher(discardLogger())
	assert.NoError(t, publisher.PublishMessageEvent(context.Background(), &service.MessageEvent{}))
	assert.NoError(t, publisher.Close())
}
