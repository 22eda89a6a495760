package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/samahq/sama/internal/interface/http"
	"github.com/samahq/sama/internal/interface/middleware"
	"github.com/samahq/sama/pkg/helpers"
)

// IdentityModule registers the account, wallet and donation routes.
type IdentityModule struct {
	Handler *handlers.IdentityHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewIdentityModule(h *handlers.IdentityHandler, rdb *redis.Client, jwt *helpers.JWTManager) *IdentityModule {
	return &IdentityModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *IdentityModule) Register(rg *gin.RouterGroup) {
	h := m.Handler

	// Tight per-IP limits on the credential endpoints.
	authRL := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.POST("/signup", authRL, h.SignUp)
	rg.POST("/signin", authRL, h.SignIn)
	rg.POST("/refresh", authRL, h.Refresh)
	rg.POST("/signout", h.SignOut)

	auth := rg.Group("")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	userRL := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil)
	auth.GET("/me", userRL, h.Me)
	auth.POST("/me/funds", userRL, h.AddFunds)
	auth.POST("/me/donations", userRL, h.Donate)
	auth.PUT("/me/password", userRL, h.ChangePassword)
	auth.POST("/me/avatar", userRL, h.UploadAvatar)

	admin := auth.Group("")
	admin.Use(middleware.RequireRole("admin"))
	admin.GET("/users/:id", h.GetUser)
	admin.GET("/users/search", h.Search)
}
