// Package handler contains the notifier's Pub/Sub push handler.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"

	"harbor/config"
	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/domain/constants"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/infra/pubsub"
	"harbor/internal/usecase"
)

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// TokenVerifier checks the bearer token of a push request.
type TokenVerifier func(req *http.Request) error

// PushHandler turns Pub/Sub pushed chat message events into push notifications
type PushHandler struct {
	verify        TokenVerifier
	logger        *slog.Logger
	notifications usecase.NotificationUsecase
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config        *config.Config
	Logger        *slog.Logger
	Notifications usecase.NotificationUsecase
}

// NewPushHandler creates a new Pub/Sub push handler. Push tokens are only
// verified for the google provider outside of development.
func NewPushHandler(params PushHandlerParams) *PushHandler {
	var verify TokenVerifier
	if params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop {
		verify = verifyPubSubToken
	}

	return newPushHandler(params.Notifications, verify, params.Logger)
}

func newPushHandler(notifications usecase.NotificationUsecase, verify TokenVerifier, logger *slog.Logger) *PushHandler {
	return &PushHandler{
		verify:        verify,
		logger:        logger,
		notifications: notifications,
	}
}

// HandlePush handles one pushed message event. It answers 503 for failures
// worth retrying and 200 otherwise so that poison messages are acknowledged.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verify != nil {
		if err := h.verify(c.Request()); err != nil {
			h.logger.Warn("Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg pubsub.PushMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	event, err := pushMsg.DecodeEvent()
	if err != nil {
		h.logger.Error("Failed to decode message event",
			slog.String("pubsub_message_id", pushMsg.Message.MessageID),
			slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := extractRequestID(ctx, &pushMsg, event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("Processing message event",
		slog.String("chat_id", event.ChatID),
		slog.String("message_id", event.MessageID),
		slog.Int("recipients", len(event.RecipientIDs)),
	)

	result, err := h.deliver(ctx, event)
	if err != nil {
		retryable := isRetryableError(err)
		reqLogger.Error("Failed to deliver message event",
			slog.String("message_id", event.MessageID),
			slog.Any("error", err),
			slog.Bool("retryable", retryable),
		)
		if retryable {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PushHandler) deliver(ctx context.Context, event *service.MessageEvent) (*usecase.PushResult, error) {
	result, err := h.notifications.DeliverMessageEvent(ctx, event)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, domainerrors.ErrValidationFailed) {
		return nil, err
	}

	return nil, &retryableError{err: err}
}

// extractRequestID prefers the message attribute, then the event payload,
// then the request header, and finally generates one.
func extractRequestID(ctx context.Context, pushMsg *pubsub.PushMessage, event *service.MessageEvent) string {
	if requestID := pushMsg.Message.Attributes["request_id"]; requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.NewString()
}

// verifyPubSubToken verifies the OIDC token Google Pub/Sub attaches to push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is the URL of this endpoint.
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := idtoken.Validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
