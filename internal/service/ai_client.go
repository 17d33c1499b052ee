package service

import (
	"context"
)

// ChatClient is the interface the chat pipeline needs from a text-completion
// provider: send an ordered list of role-tagged messages, get text back.
type ChatClient interface {
	// Complete sends the messages and returns the model's reply text
	Complete(ctx context.Context, messages []ChatMessage) (string, error)

	// IsEnabled returns whether the provider is configured and ready
	IsEnabled() bool
}

// Ensure OpenAIClient implements ChatClient
var _ ChatClient = (*OpenAIClient)(nil)
