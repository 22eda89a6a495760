package helpers

import (
	"testing"
	"time"
)

func testManager(accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	m := testManager(time.Hour, 24*time.Hour)
	token, exp, err := m.GenerateAccessToken("u1", "donor")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", exp)
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "donor" {
		t.Errorf("claims = uid %q role %q, want u1/donor", claims.UserID, claims.Role)
	}
	if claims.Subject != "u1" {
		t.Errorf("subject = %q, want u1", claims.Subject)
	}
}

func TestTokenSecretsAreSeparate(t *testing.T) {
	t.Parallel()

	m := testManager(time.Hour, 24*time.Hour)
	refresh, _, err := m.GenerateRefreshToken("u1", "donor")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	// A refresh token must not validate as an access token.
	if _, err := m.ParseAccessToken(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := m.ParseRefreshToken(refresh); err != nil {
		t.Errorf("ParseRefreshToken: %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	m := testManager(-time.Minute, -time.Minute)
	token, _, err := m.GenerateAccessToken("u1", "donor")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := m.ParseAccessToken(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	t.Parallel()

	m := testManager(time.Hour, 24*time.Hour)
	token, _, err := m.GenerateAccessToken("u1", "donor")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	other := testManager(time.Hour, 24*time.Hour)
	other.AccessSecret = []byte("different-secret")
	if _, err := other.ParseAccessToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}
