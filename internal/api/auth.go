package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
)

type contextKey string

const userContextKey contextKey = "user_id"

func userFromContext(ctx context.Context) models.UserID {
	if id, ok := ctx.Value(userContextKey).(models.UserID); ok {
		return id
	}
	return ""
}

// Authenticator verifies HS256 bearer tokens issued by the identity
// provider. The token subject is the user id.
type Authenticator struct {
	secret []byte
	leeway time.Duration
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), leeway: 30 * time.Second}
}

// Verify parses token and returns its subject.
func (a *Authenticator) Verify(token string) (models.UserID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(a.leeway))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return models.UserID(claims.Subject), nil
}

// Issue signs a token for userID. Used by tests and local tooling; production
// tokens come from the identity provider.
func (a *Authenticator) Issue(userID models.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// authMiddleware rejects requests without a valid bearer token and stores the
// user id in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			handleError(w, r, errors.Wrap(errors.ErrUserNotAuthenticated, "missing bearer token"))
			return
		}
		userID, err := s.Auth.Verify(strings.TrimSpace(token))
		if err != nil {
			log.Debug("token rejected: %v", err)
			handleError(w, r, errors.Wrap(errors.ErrUserNotAuthenticated, "invalid bearer token"))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, userID)
		ctx = logger.NewContext(ctx, log.WithField("user_id", userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
