package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samahq/sama/internal/domain/event"
	"github.com/samahq/sama/pkg/helpers"
)

// Envelope is the wire format for dispatched domain events.
type Envelope struct {
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Dispatcher publishes domain events to a durable RabbitMQ queue. It is
// invoked only after the triggering state change has been committed.
type Dispatcher struct {
	pub *helpers.RabbitPublisher
}

func NewDispatcher(pub *helpers.RabbitPublisher) *Dispatcher {
	return &Dispatcher{pub: pub}
}

func (d *Dispatcher) Dispatch(ctx context.Context, events ...event.Event) error {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return err
		}
		env := Envelope{Name: e.Name(), OccurredAt: e.OccurredAt(), Payload: payload}
		if err := d.pub.PublishJSON(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

var _ event.Dispatcher = (*Dispatcher)(nil)
