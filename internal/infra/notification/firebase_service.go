package notification

import (
	"context"

	"firebase.google.com/go/v4/messaging"

	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/infra/firebase"
)

// MaxMulticastTokens is the FCM limit of tokens per multicast request.
const MaxMulticastTokens = 500

type firebaseService struct {
	client *messaging.Client
}

// NewFirebaseService sends push notifications through FCM.
func NewFirebaseService(c *firebase.Clients) service.NotificationService {
	return &firebaseService{client: c.Messaging}
}

// SendSingleNotification sends a push notification to a single device token
func (s *firebaseService) SendSingleNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})

	return errors.Wrap(err, "send notification")
}

// SendBatchNotification sends one notification to up to MaxMulticastTokens devices
func (s *firebaseService) SendBatchNotification(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error) {
	if len(tokens) == 0 {
		return 0, 0, nil, nil
	}
	if len(tokens) > MaxMulticastTokens {
		return 0, 0, nil, errors.Errorf("token count exceeds limit: %d (max %d)", len(tokens), MaxMulticastTokens)
	}

	response, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		return 0, 0, nil, errors.Wrap(err, "send multicast notification")
	}

	for idx, sendResponse := range response.Responses {
		if sendResponse.Error != nil &&
			(messaging.IsInvalidArgument(sendResponse.Error) || messaging.IsUnregistered(sendResponse.Error)) {
			invalidTokens = append(invalidTokens, tokens[idx])
		}
	}

	return response.SuccessCount, response.FailureCount, invalidTokens, nil
}
