package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records funds added to a user's wallet. Immutable once created
// and owned exclusively by the User aggregate.
type Payment struct {
	ID        string
	UserID    string
	Value     decimal.Decimal
	Hash      string
	CreatedAt time.Time
}

func NewPayment(id, userID string, value decimal.Decimal, hash string) Payment {
	return Payment{
		ID:        id,
		UserID:    userID,
		Value:     value,
		Hash:      hash,
		CreatedAt: time.Now().UTC(),
	}
}
