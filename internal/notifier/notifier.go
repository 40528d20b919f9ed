package notifier

import "context"

// Notifier defines the interface for publishing an intake report
type Notifier interface {
	// Notify publishes a markdown report
	Notify(ctx context.Context, report string) error
}
