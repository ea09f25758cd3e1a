package rabbitmq

import "context"

type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = (*BreakerPublisher)(nil)
	_ PublisherInterface = NopPublisher{}
)
