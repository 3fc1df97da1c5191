package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultUserID identifies requests when auth is disabled.
const DefaultUserID = "default-user"

// ErrUnauthorized is returned for a missing or invalid token.
var ErrUnauthorized = errors.New("unauthorized")

// AuthFunc validates a request and returns the user ID.
type AuthFunc func(r *http.Request) (userID string, err error)

// JWTAuth accepts HS256 tokens signed with secret, read from the
// Authorization bearer header or the token query parameter. The subject
// claim is the user ID.
func JWTAuth(secret []byte) AuthFunc {
	return func(r *http.Request) (string, error) {
		raw := bearerToken(r)
		if raw == "" {
			return "", fmt.Errorf("%w: missing token", ErrUnauthorized)
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		if claims.Subject == "" {
			return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
		}
		return claims.Subject, nil
	}
}

// IssueToken signs a token for userID that expires after ttl.
func IssueToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	// Browsers cannot set headers on websocket upgrades.
	return r.URL.Query().Get("token")
}

type userIDKey struct{}

// UserID returns the authenticated user of a request handled by the API.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return DefaultUserID
}

func (s *Server) authenticate(r *http.Request) (string, error) {
	if s.config.AuthFunc == nil {
		return DefaultUserID, nil
	}
	return s.config.AuthFunc(r)
}

// authMiddleware rejects unauthenticated API requests and stores the user
// ID in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.authenticate(r)
		if err != nil {
			s.log.WithError(err).WithField("path", r.URL.Path).Debug("Rejected request")
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
	})
}
