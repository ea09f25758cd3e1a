package rabbitmq

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// BreakerPublisher stops calling the broker after repeated failures and
// fails fast with gobreaker.ErrOpenState until the timeout elapses.
type BreakerPublisher struct {
	next PublisherInterface
	cb   *gobreaker.CircuitBreaker[struct{}]
}

type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func NewBreakerPublisher(next PublisherInterface, s BreakerSettings, log logrus.FieldLogger) *BreakerPublisher {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "rabbitmq-publish",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("Publisher circuit breaker state changed")
		},
	})
	return &BreakerPublisher{next: next, cb: cb}
}

func (b *BreakerPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Publish(ctx, routingKey, data)
	})
	return err
}

func (b *BreakerPublisher) State() gobreaker.State {
	return b.cb.State()
}
