package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samahq/sama/internal/domain/entity"
	"github.com/samahq/sama/internal/domain/repository"
)

const uniqueViolation = "23505"

// UserRepository persists the User aggregate. Loads return the whole
// aggregate: user row plus payments and donations (with NGO display names).
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, `
		SELECT id, email, password_hash, role, avatar_url, funds, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.get(ctx, `
		SELECT id, email, password_hash, role, avatar_url, funds, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
}

func (r *UserRepository) get(ctx context.Context, query, arg string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.AvatarURL,
		&u.Wallet.Funds, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadPayments(ctx, u); err != nil {
		return nil, err
	}
	if err := r.loadDonations(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) loadPayments(ctx context.Context, u *entity.User) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, value, hash, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at, id
	`, u.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Value, &p.Hash, &p.CreatedAt); err != nil {
			return err
		}
		u.Payments = append(u.Payments, p)
	}
	return rows.Err()
}

func (r *UserRepository) loadDonations(ctx context.Context, u *entity.User) error {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.user_id, d.ngo_id, COALESCE(n.name, ''), d.value, d.hash, d.created_at
		FROM donations d
		LEFT JOIN ngos n ON n.id = d.ngo_id
		WHERE d.user_id = $1
		ORDER BY d.created_at, d.id
	`, u.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.Donation
		if err := rows.Scan(&d.ID, &d.UserID, &d.NgoID, &d.NgoName, &d.Value, &d.Hash, &d.CreatedAt); err != nil {
			return err
		}
		u.Donations = append(u.Donations, d)
	}
	return rows.Err()
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, avatar_url, funds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email, u.PasswordHash, u.Role, u.AvatarURL, u.Wallet.Funds, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// Update writes the user row and appends any payments or donations not yet
// stored. Money-movement rows are immutable, so ON CONFLICT DO NOTHING makes
// the append idempotent.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, role = $3, avatar_url = $4, funds = $5, updated_at = $6
		WHERE id = $7
	`, u.Email, u.PasswordHash, u.Role, u.AvatarURL, u.Wallet.Funds, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	for _, p := range u.Payments {
		if _, err := tx.Exec(ctx, `
			INSERT INTO payments (id, user_id, value, hash, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, p.ID, p.UserID, p.Value, p.Hash, p.CreatedAt); err != nil {
			return err
		}
	}
	for _, d := range u.Donations {
		if _, err := tx.Exec(ctx, `
			INSERT INTO donations (id, user_id, ngo_id, value, hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, d.ID, d.UserID, d.NgoID, d.Value, d.Hash, d.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

var _ repository.UserRepository = (*UserRepository)(nil)
