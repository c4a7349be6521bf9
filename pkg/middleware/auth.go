package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

const IdentityKey contextKey = "identity"

// Identity is the verified caller extracted from the bearer token.
type Identity struct {
	UserID string
	Name   string
	Role   model.Role
}

// Authentication verifies the Authorization bearer token and stores the
// caller identity in the request context. Tokens are HMAC-signed with
// claims: sub (user id), name (display name), role (user|admin).
func Authentication(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := identityFromRequest(r, secret)
			if err != nil {
				log.Warn("Authentication failed",
					"request_id", requestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"error":"Invalid or expired token"}`))
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func identityFromRequest(r *http.Request, secret string) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, fmt.Errorf("Authorization header is not a bearer token")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token claims")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return Identity{}, fmt.Errorf("token has no subject")
	}

	name, _ := claims["name"].(string)

	role := model.RoleUser
	if claimed, _ := claims["role"].(string); claimed == string(model.RoleAdmin) {
		role = model.RoleAdmin
	}

	return Identity{
		UserID: userID,
		Name:   name,
		Role:   role,
	}, nil
}

// IdentityFrom retrieves the authenticated caller from the context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	return identity, ok
}

// WithIdentity attaches an identity to the context. Intended for tests
// and internal callers that bypass the HTTP middleware.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}
