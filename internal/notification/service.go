package notification

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	orderstore "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/store"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
)

// Service notifies one client across all their registered devices. A nil
// dispatcher turns every notify into a logged no-op so environments without
// push credentials keep working.
type Service struct {
	dispatcher Dispatcher
	tokens     orderstore.TokenStore
	log        *logrus.Logger
}

// NewService builds a notification service over one environment's token
// registry.
func NewService(dispatcher Dispatcher, tokens orderstore.TokenStore) *Service {
	return &Service{dispatcher: dispatcher, tokens: tokens, log: logger.GetAppLogger()}
}

// NotifyClient sends a push to every device registered for the email and
// prunes tokens the provider reports as dead. Delivery failure is reported in
// the result, not as an error; only registry failures error out.
func (s *Service) NotifyClient(ctx context.Context, email, title, body string, data map[string]string) (DispatchResult, error) {
	var result DispatchResult

	email = strings.ToLower(email)
	registered, err := s.tokens.ListByEmail(ctx, email)
	if err != nil {
		return result, err
	}
	if len(registered) == 0 || s.dispatcher == nil {
		s.log.WithField("email", email).Debug("No push delivery attempted")
		return result, nil
	}

	tokens := make([]string, 0, len(registered))
	for _, t := range registered {
		tokens = append(tokens, t.Token)
	}

	result, err = s.dispatcher.Send(ctx, tokens, title, body, data)
	if err != nil {
		return result, err
	}

	if len(result.InvalidRecipients) > 0 {
		if _, err := s.tokens.DeleteTokens(ctx, result.InvalidRecipients); err != nil {
			s.log.WithError(err).WithField("email", email).Warn("Failed to prune dead device tokens")
		}
	}

	s.log.WithFields(logrus.Fields{
		"email":   email,
		"success": result.SuccessCount,
		"failure": result.FailureCount,
		"pruned":  len(result.InvalidRecipients),
	}).Info("Push notification dispatched")
	return result, nil
}

// RegisterDevice stores one device token for the email.
func (s *Service) RegisterDevice(ctx context.Context, email, token string) (ordermodels.DeviceToken, error) {
	return s.tokens.Register(ctx, ordermodels.DeviceToken{
		Email: strings.ToLower(email),
		Token: token,
	})
}
