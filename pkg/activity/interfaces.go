package activity

import "context"

// Sink delivers activity events to a downstream system (HTTP, SQS, SNS, Pub/Sub).
type Sink interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
