// Package notification delivers push messages to clients' registered devices
// and keeps the device token registry free of dead tokens.
package notification

import "context"

// DispatchResult reports one push delivery attempt.
type DispatchResult struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`

	// InvalidRecipients are tokens the provider reported as permanently
	// unregistered. Callers should remove them from the registry.
	InvalidRecipients []string `json:"invalidRecipients,omitempty"`
}

// Dispatcher sends one push message to a set of device tokens.
type Dispatcher interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (DispatchResult, error)
}
