package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a notification raised by an aggregate when its state changes.
// Aggregates queue events in memory; the application layer dispatches them
// only after the change has been durably stored.
type Event interface {
	Name() string
	OccurredAt() time.Time
}

// Dispatcher publishes domain events to external systems. Dispatch is best
// effort: a failed publish after a successful commit is logged, not rolled
// back.
type Dispatcher interface {
	Dispatch(ctx context.Context, events ...Event) error
}

type UserCreated struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	At     time.Time `json:"at"`
}

func (e UserCreated) Name() string          { return "user_created" }
func (e UserCreated) OccurredAt() time.Time { return e.At }

type FundsAdded struct {
	UserID    string          `json:"user_id"`
	PaymentID string          `json:"payment_id"`
	Value     decimal.Decimal `json:"value"`
	At        time.Time       `json:"at"`
}

func (e FundsAdded) Name() string          { return "funds_added" }
func (e FundsAdded) OccurredAt() time.Time { return e.At }

type DonationMade struct {
	UserID     string          `json:"user_id"`
	NgoID      string          `json:"ngo_id"`
	DonationID string          `json:"donation_id"`
	Value      decimal.Decimal `json:"value"`
	At         time.Time       `json:"at"`
}

func (e DonationMade) Name() string          { return "donation_made" }
func (e DonationMade) OccurredAt() time.Time { return e.At }
