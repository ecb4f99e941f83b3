package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"remittance/internal/auth"
	"remittance/internal/models"
	"remittance/internal/policy"
	"remittance/internal/store"

	"go.uber.org/zap"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// UserLookup resolves the user behind a token on every request, so role
// changes and deletions take effect before the token expires.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

func RoleFromContext(ctx context.Context) (policy.Role, bool) {
	role, ok := ctx.Value(roleKey).(policy.Role)
	return role, ok
}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, userID string, role policy.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// Auth accepts a bearer header, or a token query parameter for websocket
// upgrades where browsers cannot set headers.
func Auth(secret string, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Not authorized")
				return
			}
			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Not authorized")
				return
			}
			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeMessage(w, http.StatusUnauthorized, "User not found")
					return
				}
				zap.L().Error("load authenticated user", zap.String("user_id", claims.UserID), zap.Error(err))
				writeMessage(w, http.StatusInternalServerError, "Server error")
				return
			}
			ctx := WithUser(r.Context(), user.ID, policy.Role(user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		token := r.URL.Query().Get("token")
		return token, token != ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
