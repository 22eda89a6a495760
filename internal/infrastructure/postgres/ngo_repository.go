package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samahq/sama/internal/domain/entity"
	"github.com/samahq/sama/internal/domain/repository"
)

type NgoRepository struct {
	pool *pgxpool.Pool
}

func NewNgoRepository(pool *pgxpool.Pool) *NgoRepository {
	return &NgoRepository{pool: pool}
}

func (r *NgoRepository) GetByID(ctx context.Context, id string) (*entity.Ngo, error) {
	n := &entity.Ngo{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM ngos WHERE id = $1
	`, id)
	if err := row.Scan(&n.ID, &n.Name, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

var _ repository.NgoRepository = (*NgoRepository)(nil)
