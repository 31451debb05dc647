package interfaces

import "context"

// EventPublisher emits investor lifecycle events to a message broker.
// Publishing is best-effort: failures are logged by callers and never
// change the outcome of the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
	Close()
}
