package entity

import "time"

// Ngo is kept minimal here: the identity side only needs the display name
// when projecting a user's donations.
type Ngo struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
