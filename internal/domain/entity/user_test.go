package entity

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/samahq/sama/internal/domain/event"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAddFundsCreditsWallet(t *testing.T) {
	t.Parallel()

	u := NewUser("u1", "donor@example.com", "hash", RoleDonor)
	if !u.Wallet.Funds.IsZero() {
		t.Fatalf("new user funds = %s, want 0", u.Wallet.Funds)
	}

	if err := u.AddFunds(NewPayment("p1", "u1", dec("10.50"), "h1")); err != nil {
		t.Fatalf("AddFunds: %v", err)
	}
	if err := u.AddFunds(NewPayment("p2", "u1", dec("4.50"), "h2")); err != nil {
		t.Fatalf("AddFunds: %v", err)
	}

	if got, want := u.Wallet.Funds, dec("15"); !got.Equal(want) {
		t.Errorf("funds = %s, want %s", got, want)
	}
	if len(u.Payments) != 2 {
		t.Errorf("payments = %d, want 2", len(u.Payments))
	}
}

func TestAddFundsRejectsNonPositive(t *testing.T) {
	t.Parallel()

	u := NewUser("u1", "donor@example.com", "hash", RoleDonor)
	for _, v := range []string{"0", "-1"} {
		if err := u.AddFunds(NewPayment("p1", "u1", dec(v), "h")); !errors.Is(err, ErrNonPositiveValue) {
			t.Errorf("AddFunds(%s) = %v, want ErrNonPositiveValue", v, err)
		}
	}
	if len(u.Payments) != 0 || !u.Wallet.Funds.IsZero() {
		t.Errorf("rejected payment mutated aggregate: funds=%s payments=%d", u.Wallet.Funds, len(u.Payments))
	}
}

func TestAddFundsRejectsForeignPayment(t *testing.T) {
	t.Parallel()

	u := NewUser("u1", "donor@example.com", "hash", RoleDonor)
	if err := u.AddFunds(NewPayment("p1", "other", dec("5"), "h")); !errors.Is(err, ErrOwnerMismatch) {
		t.Errorf("AddFunds = %v, want ErrOwnerMismatch", err)
	}
}

func TestDonateDebitsWallet(t *testing.T) {
	t.Parallel()

	u := NewUser("u1", "donor@example.com", "hash", RoleDonor)
	if err := u.AddFunds(NewPayment("p1", "u1", dec("100"), "h")); err != nil {
		t.Fatalf("AddFunds: %v", err)
	}
	if err := u.Donate(NewDonation("d1", "u1", "n1", "Red Cross", dec("30"), "h")); err != nil {
		t.Fatalf("Donate: %v", err)
	}

	if got, want := u.Wallet.Funds, dec("70"); !got.Equal(want) {
		t.Errorf("funds = %s, want %s", got, want)
	}
	if got, want := u.DonatedFunds(), dec("30"); !got.Equal(want) {
		t.Errorf("donated = %s, want %s", got, want)
	}
}

func TestDonateRejectsOverdraft(t *testing.T) {
	t.Parallel()

	u := NewUser("u1", "donor@example.com", "hash", RoleDonor)
	if err := u.AddFunds(NewPayment("p1", "u1", dec("10"), "h")); err != nil {
		t.Fatalf("AddFunds: %v", err)
	}
	if err := u.Donate(NewDonation("d1", "u1", "n1", "Red Cross", dec("10.01"), "h")); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Donate = %v, want ErrInsufficientFunds", err)
	}
	if got, want := u.Wallet.Funds, dec("10"); !got.Equal(want) {
		t.Errorf("rejected donation mutated funds: %s, want %s", got, want)
	}

	// Exactly the full balance is allowed.
	if err := u.Donate(NewDonation("d2", "u1", "n1", "Red Cross", dec("10"), "h")); err != nil {
		t.Fatalf("Donate full balance: %v", err)
	}
	if !u.Wallet.Funds.IsZero() {
		t.Errorf("funds = %s, want 0", u.Wallet.Funds)
	}
}

func TestPullEventsDrainsQueue(t *testing.T) {
	t.Parallel()

	u := NewUser("u1", "donor@example.com", "hash", RoleDonor)
	_ = u.AddFunds(NewPayment("p1", "u1", dec("20"), "h"))
	_ = u.Donate(NewDonation("d1", "u1", "n1", "Red Cross", dec("5"), "h"))

	evs := u.PullEvents()
	if len(evs) != 2 {
		t.Fatalf("PullEvents = %d events, want 2", len(evs))
	}
	if _, ok := evs[0].(event.FundsAdded); !ok {
		t.Errorf("first event = %T, want FundsAdded", evs[0])
	}
	if _, ok := evs[1].(event.DonationMade); !ok {
		t.Errorf("second event = %T, want DonationMade", evs[1])
	}
	if again := u.PullEvents(); len(again) != 0 {
		t.Errorf("second PullEvents = %d events, want 0", len(again))
	}
}

func TestValidRole(t *testing.T) {
	t.Parallel()

	for _, r := range []string{RoleDonor, RoleNgo, RoleAdmin} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false, want true", r)
		}
	}
	for _, r := range []string{"", "root", "Donor", "ADMIN"} {
		if ValidRole(r) {
			t.Errorf("ValidRole(%q) = true, want false", r)
		}
	}
}
