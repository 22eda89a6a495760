package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samahq/sama/internal/domain/entity"
)

// UserDTO is the read projection of a user aggregate returned by Get.
type UserDTO struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Role         string          `json:"role"`
	AvatarURL    string          `json:"avatar_url,omitempty"`
	Funds        decimal.Decimal `json:"funds"`
	DonatedFunds decimal.Decimal `json:"donated_funds"`
	Wallet       WalletDTO       `json:"wallet"`
	Payments     []PaymentDTO    `json:"payments"`
	Donations    []DonationDTO   `json:"donations"`
	CreatedAt    time.Time       `json:"created_at"`
}

type WalletDTO struct {
	Funds decimal.Decimal `json:"funds"`
}

type PaymentDTO struct {
	ID        string          `json:"id"`
	Value     decimal.Decimal `json:"value"`
	Hash      string          `json:"hash"`
	CreatedAt time.Time       `json:"created_at"`
}

type DonationDTO struct {
	ID        string          `json:"id"`
	NgoID     string          `json:"ngo_id"`
	NgoName   string          `json:"ngo_name"`
	Value     decimal.Decimal `json:"value"`
	Hash      string          `json:"hash"`
	CreatedAt time.Time       `json:"created_at"`
}

func newUserDTO(u *entity.User) *UserDTO {
	payments := make([]PaymentDTO, 0, len(u.Payments))
	for _, p := range u.Payments {
		payments = append(payments, PaymentDTO{
			ID:        p.ID,
			Value:     p.Value,
			Hash:      p.Hash,
			CreatedAt: p.CreatedAt,
		})
	}
	donations := make([]DonationDTO, 0, len(u.Donations))
	for _, d := range u.Donations {
		donations = append(donations, DonationDTO{
			ID:        d.ID,
			NgoID:     d.NgoID,
			NgoName:   d.NgoName,
			Value:     d.Value,
			Hash:      d.Hash,
			CreatedAt: d.CreatedAt,
		})
	}
	return &UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		AvatarURL:    u.AvatarURL,
		Funds:        u.Wallet.Funds,
		DonatedFunds: u.DonatedFunds(),
		Wallet:       WalletDTO{Funds: u.Wallet.Funds},
		Payments:     payments,
		Donations:    donations,
		CreatedAt:    u.CreatedAt,
	}
}
