package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/samahq/sama/internal/application"
	"github.com/samahq/sama/internal/interface/middleware"
	"github.com/samahq/sama/pkg/helpers"
	"github.com/samahq/sama/pkg/response"
	"github.com/samahq/sama/pkg/validation"
)

// IdentityHandler exposes the identity service over HTTP.
type IdentityHandler struct {
	Svc     *application.IdentityService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewIdentityHandler(svc *application.IdentityService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *IdentityHandler {
	return &IdentityHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signUpRequest struct {
	ID       string `json:"id" binding:"omitempty,uuid"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"required,role"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type addFundsRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type donateRequest struct {
	NgoID  string          `json:"ngo_id" binding:"required,uuid"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

// statusForCode maps stable service error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case application.CodeUserNotFound, application.CodeNgoNotFound:
		return http.StatusNotFound
	case application.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case application.CodeEmailInUse:
		return http.StatusConflict
	case application.CodeInvalidCurrentPassword,
		application.CodeInvalidEmail,
		application.CodeInvalidRole,
		application.CodeInvalidAmount,
		application.CodeInsufficientFunds:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *IdentityHandler) fail(c *gin.Context, err error) {
	if code := application.CodeOf(err); code != "" {
		response.ErrorCode(c, statusForCode(code), code, err.Error())
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
}

// SignUp POST /api/signup
func (h *IdentityHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := h.Svc.SignUp(c.Request.Context(), id, req.Email, req.Password, req.Role); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": id}, "account created", nil)
}

// SignIn POST /api/signin
func (h *IdentityHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	pair, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"access_token": pair.AccessToken}, "signed in",
		map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// Refresh POST /api/refresh
func (h *IdentityHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed",
		map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// SignOut POST /api/signout
func (h *IdentityHandler) SignOut(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"signed_out": true}, "signed out", nil)
}

// Me GET /api/me
func (h *IdentityHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	dto, err := h.Svc.Get(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto, "profile", nil)
}

// GetUser GET /api/users/:id (admin)
func (h *IdentityHandler) GetUser(c *gin.Context) {
	dto, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto, "user", nil)
}

// AddFunds POST /api/me/funds
func (h *IdentityHandler) AddFunds(c *gin.Context) {
	var req addFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.AddFunds(c.Request.Context(), uid, req.Amount); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"added": req.Amount}, "funds added", nil)
}

// Donate POST /api/me/donations
func (h *IdentityHandler) Donate(c *gin.Context) {
	var req donateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Donate(c.Request.Context(), uid, req.NgoID, req.Amount); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"donated": req.Amount}, "donation recorded", nil)
}

// ChangePassword PUT /api/me/password
func (h *IdentityHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password updated", nil)
}

// UploadAvatar POST /api/me/avatar (multipart form, field "file")
func (h *IdentityHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.UploadAvatar(c.Request.Context(), uid, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}

// Search GET /api/users/search?q= (admin)
func (h *IdentityHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, 10)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}
