package repository

import (
	"context"
	"errors"

	"github.com/samahq/sama/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by Create when a unique constraint is hit.
	ErrDuplicate = errors.New("already exists")
)

// UserRepository is the sole persistence gateway for the User aggregate.
// Get operations load the full aggregate (wallet, payments, donations).
// Update follows last-writer-wins; callers load, mutate, then save.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
}

// RefreshTokenRepository stores revocable refresh credentials.
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *entity.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*entity.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// NgoRepository resolves NGOs for donation targets.
type NgoRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Ngo, error)
}
