package entity

import "time"

// RefreshToken is a stored, revocable refresh credential.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Revoked   bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
