package queue

import "context"

// Publisher publishes email task messages to the work queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg EmailMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg EmailMessage) error

// Consumer consumes email task messages from the work queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

const (
	// EmailQueueName is the durable work queue for email delivery.
	EmailQueueName = "email"
	// EmailDLQName receives messages the work queue dead-letters.
	EmailDLQName = "dlq.email"
)
