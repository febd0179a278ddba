// Package auth turns a bearer access token into the caller's user id.
//
// Tokens are HS256 JWTs issued by the authentication service with the user id
// in the "id" claim. This package only verifies them; issuing and refreshing
// tokens happens elsewhere.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openmusic/playlists-api/internal/config"
	"github.com/openmusic/playlists-api/internal/pkg/httputil"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
)

var log = logger.Component("auth")

// ErrMissingToken is returned when the request has no bearer token.
var ErrMissingToken = errors.New("missing bearer token")

// Claims are the access token claims this service reads.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// Verifier validates access tokens.
type Verifier struct {
	key    []byte
	issuer string
}

// NewVerifier creates a verifier from config. An empty issuer skips the
// issuer check.
func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{key: []byte(cfg.AccessTokenKey), issuer: cfg.Issuer}
}

// Verify parses and validates a raw token and returns the user id.
func (v *Verifier) Verify(raw string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("verify access token: %w", err)
	}
	if claims.UserID == "" {
		return "", errors.New("verify access token: missing id claim")
	}
	return claims.UserID, nil
}

// Sign issues a token for userID. Used by tests and local tooling.
func (v *Verifier) Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// user id in the request context.
func (v *Verifier) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			httputil.Unauthorized(w, err.Error())
			return
		}
		userID, err := v.Verify(raw)
		if err != nil {
			log.Debug("rejected access token", "path", r.URL.Path, "error", err)
			httputil.Unauthorized(w, "invalid access token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the authenticated user id, or "" when there is none.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
