// Package auth verifies bearer tokens on API requests and exposes the
// caller's identity through the request context. Token issuance (login,
// registration) is handled by a separate identity service; this package
// only validates what arrives in the Authorization header.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Claims are the JWT claims this service understands.
type Claims struct {
	UserID string `json:"user_id"`
	TeamID string `json:"team_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// Identity is the authenticated caller, as placed in the request context.
type Identity struct {
	UserID string
	TeamID string
	Role   string
}

type ctxKey struct{}

// Verifier validates HS256 bearer tokens.
type Verifier struct {
	secret []byte
	log    *zap.Logger
}

// NewVerifier creates a token verifier with the shared signing secret.
func NewVerifier(secret string, logger *zap.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), log: logger}
}

// Middleware rejects requests without a valid bearer token and stores
// the caller's Identity in the context for handlers downstream.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpjson.Error(w, http.StatusUnauthorized, "missing bearer token", "")
			return
		}

		ident, err := v.Verify(raw)
		if err != nil {
			v.log.Debug("token rejected", zap.Error(err))
			httpjson.Error(w, http.StatusUnauthorized, "invalid or expired token", "")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Verify parses and validates a raw token string.
func (v *Verifier) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.NewValidationError("unexpected signing method", jwt.ValidationErrorSignatureInvalid)
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, jwt.NewValidationError("token invalid", jwt.ValidationErrorClaimsInvalid)
	}
	return Identity{UserID: claims.UserID, TeamID: claims.TeamID, Role: claims.Role}, nil
}

// Sign issues a token for the given identity. Used by the CLI and tests;
// production tokens come from the identity service with the same secret.
func (v *Verifier) Sign(ident Identity, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: ident.UserID,
		TeamID: ident.TeamID,
		Role:   ident.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// FromContext returns the authenticated caller, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKey{}).(Identity)
	return ident, ok
}

// WithIdentity returns a context carrying the identity. Test helper.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, ident)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	if strings.HasPrefix(h, "Bearer ") || strings.HasPrefix(h, "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(h)
}
