package factory

import (
	"errors"
	"testing"

	"github.com/samahq/sama/internal/domain/event"
)

type stubHasher struct{}

func (stubHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (stubHasher) Verify(hash, plain string) bool    { return hash == "hashed:"+plain }

func TestCreateNormalizesEmail(t *testing.T) {
	t.Parallel()

	f := NewUserFactory(stubHasher{})
	u, err := f.Create("u1", "  Donor@Example.COM ", "secret123", "donor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "donor@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "donor@example.com")
	}
	if u.PasswordHash != "hashed:secret123" {
		t.Errorf("password hash = %q, want hashed form", u.PasswordHash)
	}
	if !u.Wallet.Funds.IsZero() {
		t.Errorf("new user funds = %s, want 0", u.Wallet.Funds)
	}
}

func TestCreateRejectsMalformedEmail(t *testing.T) {
	t.Parallel()

	f := NewUserFactory(stubHasher{})
	for _, email := range []string{"", "not-an-email", "a b@example.com", "Name <x@example.com>"} {
		if _, err := f.Create("u1", email, "secret123", "donor"); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("Create(%q) = %v, want ErrInvalidEmail", email, err)
		}
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	f := NewUserFactory(stubHasher{})
	if _, err := f.Create("u1", "donor@example.com", "secret123", "superuser"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Create = %v, want ErrInvalidRole", err)
	}
}

func TestCreateRaisesUserCreated(t *testing.T) {
	t.Parallel()

	f := NewUserFactory(stubHasher{})
	u, err := f.Create("u1", "donor@example.com", "secret123", "donor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	evs := u.PullEvents()
	if len(evs) != 1 {
		t.Fatalf("pending events = %d, want 1", len(evs))
	}
	created, ok := evs[0].(event.UserCreated)
	if !ok {
		t.Fatalf("event = %T, want UserCreated", evs[0])
	}
	if created.UserID != "u1" || created.Email != "donor@example.com" || created.Role != "donor" {
		t.Errorf("event payload = %+v", created)
	}
}
