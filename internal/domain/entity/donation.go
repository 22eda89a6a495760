package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation records funds moved from a user's wallet to an NGO. It is the
// user-side debit record; the NGO read side projects the same event.
// Immutable once created.
type Donation struct {
	ID        string
	UserID    string
	NgoID     string
	NgoName   string // display name, filled when the aggregate is loaded
	Value     decimal.Decimal
	Hash      string
	CreatedAt time.Time
}

func NewDonation(id, userID, ngoID, ngoName string, value decimal.Decimal, hash string) Donation {
	return Donation{
		ID:        id,
		UserID:    userID,
		NgoID:     ngoID,
		NgoName:   ngoName,
		Value:     value,
		Hash:      hash,
		CreatedAt: time.Now().UTC(),
	}
}
