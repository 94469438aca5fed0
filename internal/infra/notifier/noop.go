package notifier

import (
	"context"

	"clankervids/internal/usecase/notify"
)

// NoOpChannel is the Null Object channel used when notifications are
// disabled, so the dispatch path needs no nil checks.
type NoOpChannel struct{}

// NewNoOpChannel creates a new NoOpChannel instance.
func NewNoOpChannel() *NoOpChannel {
	return &NoOpChannel{}
}

// Name implements notify.Channel.
func (n *NoOpChannel) Name() string { return "noop" }

// IsEnabled implements notify.Channel.
func (n *NoOpChannel) IsEnabled() bool { return false }

// Send does nothing and returns nil immediately.
func (n *NoOpChannel) Send(ctx context.Context, report notify.Report) error {
	return nil
}
