// File: internal/infra/web/auth.go
package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"matchday-reports/internal/infra/logging"
)

type authorKey struct{}

// AuthorID extracts the authenticated author id from the request context.
func AuthorID(ctx context.Context) string {
	if v, ok := ctx.Value(authorKey{}).(string); ok {
		return v
	}
	return ""
}

type AuthorClaims struct {
	jwt.RegisteredClaims
}

// AuthManager resolves the author identity of a request. Production traffic
// carries a bearer JWT (HS256, subject = author id); dev mode additionally
// accepts a bare X-Author-Id header.
type AuthManager struct {
	secret      []byte
	devFallback bool
}

func NewAuthManager(secret string, devFallback bool) *AuthManager {
	return &AuthManager{secret: []byte(secret), devFallback: devFallback}
}

var errMissingToken = errors.New("missing token")

func (a *AuthManager) authorFromRequest(r *http.Request) (string, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return "", errors.New("malformed authorization header")
		}
		return a.parse(strings.TrimSpace(hdr[7:]))
	}
	if a.devFallback {
		if id := strings.TrimSpace(r.Header.Get("X-Author-Id")); id != "" {
			return id, nil
		}
	}
	return "", errMissingToken
}

func (a *AuthManager) parse(tok string) (string, error) {
	claims := &AuthorClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// Mint signs a token for an author id. Used by tests and local tooling.
func (a *AuthManager) Mint(authorID string) (string, error) {
	claims := AuthorClaims{jwt.RegisteredClaims{Subject: authorID}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// RequireAuthor rejects unauthenticated requests and stashes the author id in
// the context for handlers and log lines.
func (a *AuthManager) RequireAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorID, err := a.authorFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), authorKey{}, authorID)
		ctx = logging.WithAuthorID(ctx, authorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
