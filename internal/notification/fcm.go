package notification

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmBatchLimit is FCM's maximum recipients per multicast request.
const fcmBatchLimit = 500

// FCMDispatcher sends pushes through Firebase Cloud Messaging.
type FCMDispatcher struct {
	client *messaging.Client
}

// NewFCMDispatcher initializes the Firebase Admin SDK from a service account
// file and returns a messaging dispatcher.
func NewFCMDispatcher(ctx context.Context, projectID, credentialsPath string) (*FCMDispatcher, error) {
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found: %s", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID},
		option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase messaging client: %w", err)
	}
	return &FCMDispatcher{client: client}, nil
}

// Send delivers one message to every token, chunked to FCM's multicast limit.
// Unregistered tokens are collected for pruning rather than treated as
// failures of the whole send.
func (d *FCMDispatcher) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (DispatchResult, error) {
	var result DispatchResult
	if len(tokens) == 0 {
		return result, nil
	}

	for start := 0; start < len(tokens); start += fcmBatchLimit {
		end := start + fcmBatchLimit
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		resp, err := d.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		})
		if err != nil {
			return result, fmt.Errorf("failed to send multicast message: %w", err)
		}

		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount
		for i, send := range resp.Responses {
			if send.Error == nil {
				continue
			}
			if messaging.IsRegistrationTokenNotRegistered(send.Error) {
				result.InvalidRecipients = append(result.InvalidRecipients, batch[i])
			}
		}
	}
	return result, nil
}
