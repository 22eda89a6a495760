// Package factory constructs new aggregates. Outside deserialization by a
// repository, NewUserFactory is the only authorized way to build a User.
package factory

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/samahq/sama/internal/domain/entity"
	"github.com/samahq/sama/internal/domain/event"
	"github.com/samahq/sama/internal/domain/service"
)

var (
	ErrInvalidEmail = errors.New("malformed email address")
	ErrInvalidRole  = errors.New("unrecognized role")
)

// UserFactory builds a User aggregate from signup input. The returned user
// carries a pending user_created event; duplicate detection against storage
// is the repository's job at Create time.
type UserFactory interface {
	Create(id, email, password, role string) (*entity.User, error)
}

type userFactory struct {
	hasher service.PasswordHasher
}

func NewUserFactory(hasher service.PasswordHasher) UserFactory {
	return &userFactory{hasher: hasher}
}

func (f *userFactory) Create(id, email, password, role string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if !entity.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	hash, err := f.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := entity.NewUser(id, email, hash, role)
	u.Raise(event.UserCreated{UserID: u.ID, Email: u.Email, Role: u.Role, At: time.Now().UTC()})
	return u, nil
}
