package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

var testSecret = []byte("test-secret")

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestJWTResolver(t *testing.T) {
	resolver := JWTResolver{Secret: testSecret}

	valid, err := IssueToken(testSecret, "user-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := IssueToken(testSecret, "user-1", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	otherSecret, err := IssueToken([]byte("other"), "user-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid token resolves subject", func(t *testing.T) {
		id, err := resolver.ResolveIdentity(bearerRequest(valid))
		if err != nil {
			t.Fatal(err)
		}
		if !id.Equal(models.Identity{ID: "user-1"}) {
			t.Errorf("identity = %+v", id)
		}
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer "+valid)
		if _, err := resolver.ResolveIdentity(req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	rejected := map[string]*http.Request{
		"missing header": bearerRequest(""),
		"expired":        bearerRequest(expired),
		"wrong secret":   bearerRequest(otherSecret),
		"no subject":     bearerRequest(noSubject),
		"alg none":       bearerRequest(unsigned),
		"garbage":        bearerRequest("not-a-token"),
	}
	for name, req := range rejected {
		t.Run(name, func(t *testing.T) {
			if _, err := resolver.ResolveIdentity(req); err != ErrUnauthenticated {
				t.Errorf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}

	t.Run("empty secret rejects everything", func(t *testing.T) {
		if _, err := (JWTResolver{}).ResolveIdentity(bearerRequest(valid)); err != ErrUnauthenticated {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestRequireIdentity(t *testing.T) {
	var called bool
	var seen models.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireIdentity(JWTResolver{Secret: testSecret})(next)

	t.Run("short-circuits without identity", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, bearerRequest(""))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if called {
			t.Error("next handler was called")
		}
		if !strings.Contains(rec.Body.String(), `"message"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("passes identity to next", func(t *testing.T) {
		called = false
		token, _ := IssueToken(testSecret, "user-7", time.Hour)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, bearerRequest(token))

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		if !called || seen.ID != "user-7" {
			t.Errorf("called = %v, identity = %+v", called, seen)
		}
	})
}
