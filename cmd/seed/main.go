package main

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/samahq/sama/config"
	"github.com/samahq/sama/internal/domain/factory"
	"github.com/samahq/sama/internal/domain/repository"
	"github.com/samahq/sama/internal/infrastructure/postgres"
	"github.com/samahq/sama/internal/infrastructure/security"
)

// Seeds a demo NGO and demo accounts for local development. Safe to run more
// than once.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	ngoID := uuid.NewString()
	if _, err := pool.Exec(ctx,
		`INSERT INTO ngos (id, name, created_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO NOTHING`,
		ngoID, "Clean Water Initiative"); err != nil {
		log.Fatalf("seed ngo: %v", err)
	}

	users := postgres.NewUserRepository(pool)
	userFactory := factory.NewUserFactory(security.NewBcryptHasher())

	seedUser := func(email, password, role string) {
		u, err := userFactory.Create(uuid.NewString(), email, password, role)
		if err != nil {
			log.Fatalf("build %s: %v", email, err)
		}
		if err := users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				log.Printf("%s already exists, skipping", email)
				return
			}
			log.Fatalf("create %s: %v", email, err)
		}
		log.Printf("created %s (%s)", email, role)
	}

	seedUser("donor@example.com", "donor-pass-123", "donor")
	seedUser("admin@example.com", "admin-pass-123", "admin")

	log.Println("seed complete")
}
