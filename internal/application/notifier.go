package application

import "context"

type Notifier interface {
	Send(ctx context.Context, title, message, attachment string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Send(_ context.Context, _, _, _ string) error {
	return nil
}
