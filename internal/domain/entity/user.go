package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samahq/sama/internal/domain/event"
)

// Wallet is the user's in-platform balance. It is owned by the User
// aggregate and only mutated through it.
type Wallet struct {
	Funds decimal.Decimal
}

// User is the aggregate root for identity and fund bookkeeping. Payments
// and Donations are append-only; Wallet.Funds stays the sum of payment
// values minus donation values and never goes negative.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	AvatarURL    string
	Wallet       Wallet
	Payments     []Payment
	Donations    []Donation
	CreatedAt    time.Time
	UpdatedAt    time.Time

	events []event.Event
}

// NewUser assembles an aggregate from already-validated parts. Use
// factory.NewUserFactory for constructing users from raw signup input.
func NewUser(id, email, passwordHash, role string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Wallet:       Wallet{Funds: decimal.Zero},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AddFunds appends the payment and credits the wallet.
func (u *User) AddFunds(p Payment) error {
	if !p.Value.IsPositive() {
		return ErrNonPositiveValue
	}
	if p.UserID != u.ID {
		return ErrOwnerMismatch
	}
	u.Payments = append(u.Payments, p)
	u.Wallet.Funds = u.Wallet.Funds.Add(p.Value)
	u.touch()
	u.Raise(event.FundsAdded{UserID: u.ID, PaymentID: p.ID, Value: p.Value, At: p.CreatedAt})
	return nil
}

// Donate appends the donation and debits the wallet. The wallet balance
// must cover the full donation value.
func (u *User) Donate(d Donation) error {
	if !d.Value.IsPositive() {
		return ErrNonPositiveValue
	}
	if d.UserID != u.ID {
		return ErrOwnerMismatch
	}
	if u.Wallet.Funds.LessThan(d.Value) {
		return ErrInsufficientFunds
	}
	u.Donations = append(u.Donations, d)
	u.Wallet.Funds = u.Wallet.Funds.Sub(d.Value)
	u.touch()
	u.Raise(event.DonationMade{UserID: u.ID, NgoID: d.NgoID, DonationID: d.ID, Value: d.Value, At: d.CreatedAt})
	return nil
}

// SetPasswordHash replaces the stored hash. The caller has already verified
// authorization.
func (u *User) SetPasswordHash(hash string) {
	u.PasswordHash = hash
	u.touch()
}

// DonatedFunds is the aggregate amount this user has donated.
func (u *User) DonatedFunds() decimal.Decimal {
	total := decimal.Zero
	for _, d := range u.Donations {
		total = total.Add(d.Value)
	}
	return total
}

// Raise queues a domain event for post-commit dispatch.
func (u *User) Raise(e event.Event) {
	u.events = append(u.events, e)
}

// PullEvents drains and returns the pending events.
func (u *User) PullEvents() []event.Event {
	evs := u.events
	u.events = nil
	return evs
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}
