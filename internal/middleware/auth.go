package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

var ErrUnauthenticated = errors.New("not authenticated")

// IdentityResolver resolves the authenticated caller of a request.
type IdentityResolver interface {
	ResolveIdentity(r *http.Request) (models.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFrom returns the identity stored by RequireIdentity.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(models.Identity)
	return id, ok && !id.IsZero()
}

// RequireIdentity rejects requests whose identity cannot be resolved with
// 401 and never calls next for them.
func RequireIdentity(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.ResolveIdentity(r)
			if err != nil || id.IsZero() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not authenticated"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// JWTResolver reads an HMAC-signed bearer token and uses its subject as the
// caller identity.
type JWTResolver struct {
	Secret []byte
}

func (j JWTResolver) ResolveIdentity(r *http.Request) (models.Identity, error) {
	if len(j.Secret) == 0 {
		return models.Identity{}, ErrUnauthenticated
	}
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authHeader) < 8 || !strings.EqualFold(authHeader[:7], "bearer ") {
		return models.Identity{}, ErrUnauthenticated
	}
	tokenStr := strings.TrimSpace(authHeader[7:])

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil || !token.Valid {
		return models.Identity{}, ErrUnauthenticated
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return models.Identity{}, ErrUnauthenticated
	}
	return models.Identity{ID: sub}, nil
}

// IssueToken signs an HS256 token whose subject is userID.
func IssueToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(secret)
}
