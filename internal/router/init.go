package router

import (
	"github.com/samahq/sama/internal/application"
	"github.com/samahq/sama/internal/container"
	"github.com/samahq/sama/internal/domain/factory"
	"github.com/samahq/sama/internal/infrastructure/postgres"
	"github.com/samahq/sama/internal/infrastructure/rabbitmq"
	"github.com/samahq/sama/internal/infrastructure/security"
	handlers "github.com/samahq/sama/internal/interface/http"
	"github.com/samahq/sama/internal/router/modules"
)

// Init builds the application dependency graph from the container and
// registers every feature module on the registry.
func Init(reg *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	users := postgres.NewUserRepository(pool)
	tokens := postgres.NewRefreshTokenRepository(pool)
	ngos := postgres.NewNgoRepository(pool)
	hasher := security.NewBcryptHasher()
	userFactory := factory.NewUserFactory(hasher)
	dispatcher := rabbitmq.NewDispatcher(container.GetRabbitPub())

	svc := application.NewIdentityService(users, tokens, ngos, userFactory, hasher, jwt, dispatcher, logger)
	svc.Redis = rdb
	svc.ES = container.GetES()
	svc.ESUsersIndex = cfg.ESUsersIndex
	svc.GCS = container.GetGCS()
	svc.GCSBucket = cfg.GCSBucket

	identity := handlers.NewIdentityHandler(svc, logger, cfg.CookieDomain, cfg.CookieSecure)

	reg.Add(modules.NewIdentityModule(identity, rdb, jwt))
	if cfg.DebugMetricsEnabled {
		reg.Add(modules.NewDebugModule())
	}
	reg.RegisterAll()
}
