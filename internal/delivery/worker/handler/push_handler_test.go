package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deliverycontext "harbor/internal/delivery/context"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/usecase"
)

type fakeNotifications struct {
	err       error
	got       *service.MessageEvent
	requestID string
}

func (f *fakeNotifications) DeliverMessageEvent(ctx context.Context, event *service.MessageEvent) (*usecase.PushResult, error) {
	f.got = event
	f.requestID = deliverycontext.GetRequestIDFromContext(ctx)
	if f.err != nil {
		return nil, f.err
	}

	return &usecase.PushResult{Recipients: len(event.RecipientIDs), SuccessCount: 1}, nil
}

func pushBody(t *testing.T, event service.MessageEvent, attributes map[string]string) string {
	t.Helper()

	data, err := json.Marshal(event)
	require.NoError(t, err)

	envelope := map[string]any{
		"message": map[string]any{
			"data":       base64.StdEncoding.EncodeToString(data),
			"attributes": attributes,
			"messageId":  "pubsub-1",
		},
		"subscription": "projects/p/subscriptions/notifier",
	}
	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	return string(body)
}

func doPush(h *PushHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/pubsub/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = h.HandlePush(c)

	return rec
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPushHandler_DeliversEvent(t *testing.T) {
	fake := &fakeNotifications{}
	h := newPushHandler(fake, nil, testLogger())

	event := service.MessageEvent{ChatID: "chat-1", MessageID: "m-1", SenderID: "a", RecipientIDs: []string{"a", "b"}}
	rec := doPush(h, pushBody(t, event, map[string]string{"request_id": "req-attr"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.got)
	assert.Equal(t, "m-1", fake.got.MessageID)
	assert.Equal(t, "req-attr", fake.requestID)
	assert.Contains(t, rec.Body.String(), `"recipients":2`)
}

func TestPushHandler_RequestIDFallsBackToEvent(t *testing.T) {
	fake := &fakeNotifications{}
	h := newPushHandler(fake, nil, testLogger())

	event := service.MessageEvent{RequestID: "req-event", ChatID: "chat-1", MessageID: "m-1"}
	rec := doPush(h, pushBody(t, event, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-event", fake.requestID)
}

func TestPushHandler_RejectsMalformedPayload(t *testing.T) {
	h := newPushHandler(&fakeNotifications{}, nil, testLogger())

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{"},
		{name: "not base64", body: `{"message":{"data":"%%%"}}`},
		{name: "missing ids", body: pushBody(t, service.MessageEvent{ChatID: "chat-1"}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPush(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPushHandler_GatewayFailureIsRetried(t *testing.T) {
	fake := &fakeNotifications{err: domainerrors.NewGatewayError(errors.New("firestore down"), "load recipient")}
	h := newPushHandler(fake, nil, testLogger())

	rec := doPush(h, pushBody(t, service.MessageEvent{ChatID: "chat-1", MessageID: "m-1"}, nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPushHandler_ValidationFailureIsAcknowledged(t *testing.T) {
	fake := &fakeNotifications{err: errors.Wrap(domainerrors.ErrValidationFailed, "bad event")}
	h := newPushHandler(fake, nil, testLogger())

	rec := doPush(h, pushBody(t, service.MessageEvent{ChatID: "chat-1", MessageID: "m-1"}, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPushHandler_RejectsUnverifiedToken(t *testing.T) {
	fake := &fakeNotifications{}
	h := newPushHandler(fake, verifyPubSubToken, testLogger())

	rec := doPush(h, pushBody(t, service.MessageEvent{ChatID: "chat-1", MessageID: "m-1"}, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, fake.got)
}
