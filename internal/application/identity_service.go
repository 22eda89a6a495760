package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/samahq/sama/internal/domain/entity"
	"github.com/samahq/sama/internal/domain/event"
	"github.com/samahq/sama/internal/domain/factory"
	repo "github.com/samahq/sama/internal/domain/repository"
	domainsvc "github.com/samahq/sama/internal/domain/service"
	"github.com/samahq/sama/pkg/helpers"
)

// IdentityService orchestrates identity and fund use cases: it loads one
// aggregate per operation, mutates it in memory, persists it, and only then
// dispatches the events the aggregate raised.
//
// Redis, ES and GCS are optional collaborators; nil disables the feature.
type IdentityService struct {
	Users   repo.UserRepository
	Tokens  repo.RefreshTokenRepository
	Ngos    repo.NgoRepository
	Factory factory.UserFactory
	Hasher  domainsvc.PasswordHasher
	JWT     *helpers.JWTManager
	Events  event.Dispatcher
	Logger  *logrus.Logger

	Redis        *redis.Client
	ES           *elasticsearch.Client
	ESUsersIndex string
	GCS          *storage.Client
	GCSBucket    string
}

func NewIdentityService(
	users repo.UserRepository,
	tokens repo.RefreshTokenRepository,
	ngos repo.NgoRepository,
	f factory.UserFactory,
	hasher domainsvc.PasswordHasher,
	jwt *helpers.JWTManager,
	events event.Dispatcher,
	logger *logrus.Logger,
) *IdentityService {
	return &IdentityService{
		Users:   users,
		Tokens:  tokens,
		Ngos:    ngos,
		Factory: f,
		Hasher:  hasher,
		JWT:     jwt,
		Events:  events,
		Logger:  logger,
	}
}

// TokenPair is the session credential set returned by SignIn and Refresh.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// projectionTTL bounds staleness of the cached Get projection.
const projectionTTL = 30 * time.Second

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func projectionKey(userID string) string {
	return "user:projection:" + userID
}

// Get returns the read projection of a user, or user_not_found.
func (s *IdentityService) Get(ctx context.Context, id string) (*UserDTO, error) {
	if s.Redis != nil {
		var cached UserDTO
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, projectionKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errUserNotFound(id)
		}
		return nil, err
	}
	dto := newUserDTO(u)
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, projectionKey(id), dto, projectionTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("projection cache write failed")
		}
	}
	return dto, nil
}

// invalidateProjection drops the cached Get projection after a write.
func (s *IdentityService) invalidateProjection(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, projectionKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("projection cache invalidation failed")
	}
}

// AddFunds credits the user's wallet with a new payment record.
func (s *IdentityService) AddFunds(ctx context.Context, id string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errInvalidAmount()
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errUserNotFound(id)
		}
		return err
	}
	p := entity.NewPayment(uuid.NewString(), u.ID, amount, auditHash())
	if err := u.AddFunds(p); err != nil {
		if errors.Is(err, entity.ErrNonPositiveValue) {
			return errInvalidAmount()
		}
		return err
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	s.dispatch(ctx, u.PullEvents())
	s.invalidateProjection(ctx, u.ID)
	s.indexUser(ctx, u)
	return nil
}

// Donate moves funds from the user's wallet to an NGO.
func (s *IdentityService) Donate(ctx context.Context, id, ngoID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errInvalidAmount()
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errUserNotFound(id)
		}
		return err
	}
	ngo, err := s.Ngos.GetByID(ctx, ngoID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNgoNotFound(ngoID)
		}
		return err
	}
	d := entity.NewDonation(uuid.NewString(), u.ID, ngo.ID, ngo.Name, amount, auditHash())
	if err := u.Donate(d); err != nil {
		switch {
		case errors.Is(err, entity.ErrInsufficientFunds):
			return NewError(CodeInsufficientFunds, "Insufficient funds.")
		case errors.Is(err, entity.ErrNonPositiveValue):
			return errInvalidAmount()
		}
		return err
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	s.dispatch(ctx, u.PullEvents())
	s.invalidateProjection(ctx, u.ID)
	s.indexUser(ctx, u)
	return nil
}

// SignUp builds a new user through the factory and persists it. Events are
// dispatched strictly after Create so they always refer to stored state.
func (s *IdentityService) SignUp(ctx context.Context, id, email, password, role string) error {
	u, err := s.Factory.Create(id, email, password, role)
	if err != nil {
		switch {
		case errors.Is(err, factory.ErrInvalidEmail):
			return NewError(CodeInvalidEmail, "Email: '%s' is malformed.", email)
		case errors.Is(err, factory.ErrInvalidRole):
			return NewError(CodeInvalidRole, "Role: '%s' is unrecognized.", role)
		}
		return err
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return errEmailInUse(u.Email)
		}
		return err
	}
	s.dispatch(ctx, u.PullEvents())
	s.invalidateProjection(ctx, u.ID)
	s.indexUser(ctx, u)
	return nil
}

// SignIn validates credentials and issues a token pair. An unknown email
// and a wrong password are indistinguishable to the caller.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		return nil, errInvalidCredentials()
	}
	if !s.Hasher.Verify(u.PasswordHash, password) {
		return nil, errInvalidCredentials()
	}
	return s.issueTokens(ctx, u)
}

// Refresh rotates a token pair. The presented refresh token must parse,
// match a stored active token, and resolve to an existing user.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, errInvalidCredentials()
	}
	stored, err := s.Tokens.GetByToken(ctx, refreshToken)
	if err != nil || !stored.Active(time.Now().UTC()) {
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		return nil, errInvalidCredentials()
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, err
	}
	if err := s.Tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, u)
}

// ChangePassword verifies the current password before storing a new hash.
// Outstanding refresh tokens are revoked so stolen sessions die with the
// old password.
func (s *IdentityService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errUserNotFound(userID)
		}
		return err
	}
	if !s.Hasher.Verify(u.PasswordHash, currentPassword) {
		return errInvalidCurrentPassword()
	}
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	u.SetPasswordHash(hash)
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	if err := s.Tokens.RevokeAllForUser(ctx, userID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("revoking refresh tokens failed")
	}
	return nil
}

// UploadAvatar stores the image in GCS and records its public URL.
func (s *IdentityService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("object storage not configured")
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", errUserNotFound(userID)
		}
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		return "", err
	}
	s.invalidateProjection(ctx, u.ID)
	s.indexUser(ctx, u)
	return url, nil
}

// SearchUsers runs a multi_match query over email and role.
func (s *IdentityService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "role"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *IdentityService) issueTokens(ctx context.Context, u *entity.User) (*TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return nil, err
	}

	if s.Tokens != nil {
		t := &entity.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    u.ID,
			Token:     refresh,
			CreatedAt: time.Now().UTC(),
			ExpiresAt: rexp,
		}
		if err := s.Tokens.Create(ctx, t); err != nil {
			return nil, err
		}
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":   u.ID,
			"email":     u.Email,
			"role":      u.Role,
			"logged_in": true,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return &TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

// dispatch publishes post-commit events. Failures are logged, never rolled
// back: the state change is already durable.
func (s *IdentityService) dispatch(ctx context.Context, events []event.Event) {
	if s.Events == nil || len(events) == 0 {
		return
	}
	if err := s.Events.Dispatch(ctx, events...); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("event dispatch failed")
	}
}

func (s *IdentityService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":            u.ID,
		"email":         u.Email,
		"role":          u.Role,
		"funds":         u.Wallet.Funds,
		"donated_funds": u.DonatedFunds(),
		"created_at":    u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// auditHash produces the opaque traceability token stored with each money
// movement record.
func auditHash() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
