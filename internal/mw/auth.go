package mw

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"foodorder/internal/model"
)

type contextKey string

const UserCtxKey contextKey = "user"

const tokenTTL = 24 * time.Hour

// Identity is the caller resolved from a bearer token.
type Identity struct {
	ID    string
	Email string
	Role  model.Role
}

// FailFunc writes an error response. Handlers pass their envelope writer.
type FailFunc func(w http.ResponseWriter, status int, message string)

func IssueToken(secret string, u *model.User, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    u.ID,
		"email": u.Email,
		"role":  string(u.Role),
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	return token.SignedString([]byte(secret))
}

func parseToken(tokenString, secret string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	userID, ok := claims["id"].(string)
	if !ok || userID == "" {
		return nil, errors.New("id not found in token")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &Identity{ID: userID, Email: email, Role: model.Role(role)}, nil
}

func bearer(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func AuthMiddleware(jwtSecret string, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				fail(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			tokenString, ok := bearer(r)
			if !ok {
				fail(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			ident, err := parseToken(tokenString, jwtSecret)
			if err != nil {
				fail(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose token does not carry one of roles.
// It must run after AuthMiddleware.
func RequireRole(fail FailFunc, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := FromContext(r.Context())
			if !ok {
				fail(w, http.StatusUnauthorized, "User not authenticated")
				return
			}
			for _, role := range roles {
				if ident.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			fail(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func FromContext(ctx context.Context) (*Identity, bool) {
	ident, ok := ctx.Value(UserCtxKey).(*Identity)
	return ident, ok && ident != nil
}

// UserID returns the caller's id, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	if ident, ok := FromContext(ctx); ok {
		return ident.ID
	}
	return ""
}
