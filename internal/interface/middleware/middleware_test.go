package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samahq/sama/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testJWT() *helpers.JWTManager {
	return &helpers.JWTManager{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}
}

func TestAuthRejectsMissingCookie(t *testing.T) {
	r := gin.New()
	r.GET("/me", Auth(nil, testJWT()), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthSetsIdentity(t *testing.T) {
	jwt := testJWT()
	token, _, err := jwt.GenerateAccessToken("u1", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	var gotID, gotRole string
	r := gin.New()
	r.GET("/me", Auth(nil, jwt), func(c *gin.Context) {
		gotID = c.GetString(CtxUserIDKey)
		gotRole = c.GetString(CtxUserRoleKey)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotID != "u1" || gotRole != "admin" {
		t.Errorf("identity = %q/%q, want u1/admin", gotID, gotRole)
	}
}

func TestRequireRole(t *testing.T) {
	jwt := testJWT()
	r := gin.New()
	r.GET("/admin", Auth(nil, jwt), RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"donor", http.StatusForbidden},
	}
	for _, tc := range cases {
		token, _, err := jwt.GenerateAccessToken("u1", tc.role)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("role %q: status = %d, want %d", tc.role, w.Code, tc.want)
		}
	}
}

func TestRateLimitKeys(t *testing.T) {
	r := gin.New()
	var byIP, byUser string
	r.GET("/x", func(c *gin.Context) {
		c.Set(CtxUserIDKey, "u1")
		byIP = KeyByIPAndPath()(c)
		byUser = KeyByUserID()(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.RemoteAddr = "203.0.113.9:1234"
	r.ServeHTTP(w, req)

	if byIP != "rl:path:/x:ip:203.0.113.9" {
		t.Errorf("ip key = %q", byIP)
	}
	if byUser != "rl:user:u1" {
		t.Errorf("user key = %q", byUser)
	}
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}
