package impl

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"harbor/config"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/usecase"
)

// FCM multicast limit
const pushBatchSize = 500

// NotificationServiceParams holds dependencies for push delivery, injected by Fx
type NotificationServiceParams struct {
	fx.In

	Users    repository.UserRepository
	Push     service.NotificationService
	Config   *config.Config
	Logger   *slog.Logger
	Observer usecase.PushObserver `optional:"true"`
}

type notificationService struct {
	users        repository.UserRepository
	push         service.NotificationService
	defaultTitle string
	logger       *slog.Logger
	observer     usecase.PushObserver
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(params NotificationServiceParams) usecase.NotificationUsecase {
	title := "New message"
	if params.Config != nil && params.Config.Notifier != nil && params.Config.Notifier.DefaultTitle != "" {
		title = params.Config.Notifier.DefaultTitle
	}

	return &notificationService{
		users:        params.Users,
		push:         params.Push,
		defaultTitle: title,
		logger:       params.Logger,
		observer:     params.Observer,
	}
}

// DeliverMessageEvent pushes the message to every device of its recipients
// and unregisters the tokens the provider rejects.
func (s *notificationService) DeliverMessageEvent(ctx context.Context, event *service.MessageEvent) (*usecase.PushResult, error) {
	if event == nil || event.ChatID == "" || event.MessageID == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "chat id and message id are required")
	}

	logger := loggerFrom(ctx, s.logger).With(
		slog.String("chat_id", event.ChatID),
		slog.String("message_id", event.MessageID))

	result := &usecase.PushResult{Recipients: len(event.RecipientIDs)}

	// token -> owning user
	owners := make(map[string]string)
	tokens := make([]string, 0)
	for _, uid := range event.RecipientIDs {
		if uid == event.SenderID {
			continue
		}

		user, err := s.users.FindByID(ctx, uid)
		if errors.Is(err, repository.ErrUserNotFound) {
			logger.Warn("Push recipient has no profile", slog.String("user_id", uid))

			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "load recipient %s", uid)
		}

		for _, token := range user.FCMTokens {
			if _, dup := owners[token]; dup {
				continue
			}
			owners[token] = uid
			tokens = append(tokens, token)
		}
	}

	if len(tokens) == 0 {
		logger.Debug("No devices to notify")

		return result, nil
	}

	title := event.SenderName
	if title == "" {
		title = s.defaultTitle
	}
	data := map[string]string{
		"chat_id":    event.ChatID,
		"message_id": event.MessageID,
		"sender_id":  event.SenderID,
	}

	invalidByUser := make(map[string][]string)
	for start := 0; start < len(tokens); start += pushBatchSize {
		batch := tokens[start:min(start+pushBatchSize, len(tokens))]

		success, failure, invalid, err := s.push.SendBatchNotification(ctx, batch, title, event.Text, data)
		if err != nil {
			// Log error but continue with other batches
			logger.Error("Push batch failed", slog.Int("tokens", len(batch)), slog.Any("error", err))
			result.FailureCount += len(batch)

			continue
		}

		result.SuccessCount += success
		result.FailureCount += failure
		result.InvalidTokens += len(invalid)
		for _, token := range invalid {
			if uid, ok := owners[token]; ok {
				invalidByUser[uid] = append(invalidByUser[uid], token)
			}
		}
	}

	for uid, invalid := range invalidByUser {
		if err := s.users.RemoveFCMTokens(ctx, uid, invalid); err != nil {
			logger.Warn("Failed to remove invalid push tokens", slog.String("user_id", uid), slog.Any("error", err))
		}
	}

	if s.observer != nil {
		s.observer.PushSent(result.SuccessCount, result.FailureCount, result.InvalidTokens)
	}

	logger.Info("Message event delivered",
		slog.Int("success", result.SuccessCount),
		slog.Int("failure", result.FailureCount),
		slog.Int("invalid", result.InvalidTokens))

	return result, nil
}
