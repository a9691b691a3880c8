package notification

import (
	"context"
	"log/slog"

	"harbor/internal/domain/service"
)

type logService struct {
	logger *slog.Logger
}

// NewLogService records notifications in the log instead of sending them.
// It backs the in-memory gateway.
func NewLogService(logger *slog.Logger) service.NotificationService {
	return &logService{logger: logger}
}

func (s *logService) SendSingleNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	s.logger.InfoContext(ctx, "Push notification",
		slog.String("title", title),
		slog.String("body", body),
		slog.Any("data", data),
	)

	return nil
}

func (s *logService) SendBatchNotification(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error) {
	s.logger.InfoContext(ctx, "Push notification batch",
		slog.Int("token_count", len(tokens)),
		slog.String("title", title),
		slog.String("body", body),
		slog.Any("data", data),
	)

	return len(tokens), 0, nil, nil
}
