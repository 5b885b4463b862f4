package application

import "context"

// Conversation is the long-lived exchange with the assistant backend. One
// conversation is created at startup and reused for every forwarded
// utterance; runs against it complete asynchronously and are polled.
type Conversation interface {
	CreateConversation(ctx context.Context) (string, error)
	PostMessage(ctx context.Context, conversationID, text string) error
	StartRun(ctx context.Context, conversationID string) (string, error)
	RunCompleted(ctx context.Context, conversationID, runID string) (bool, error)
	LatestReply(ctx context.Context, conversationID string) (string, error)
}
