package usecase

import (
	"context"

	"harbor/internal/domain/service"
)

// PushResult summarizes one delivered message event.
type PushResult struct {
	Recipients    int `json:"recipients"`
	SuccessCount  int `json:"successCount"`
	FailureCount  int `json:"failureCount"`
	InvalidTokens int `json:"invalidTokens"`
}

// NotificationUsecase turns chat message events into push notifications.
type NotificationUsecase interface {
	DeliverMessageEvent(ctx context.Context, event *service.MessageEvent) (*PushResult, error)
}

// PushObserver is told the outcome of every delivered batch.
type PushObserver interface {
	PushSent(success, failure, invalid int)
}
