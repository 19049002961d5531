package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/platform/auth"
)

// AuthMiddleware gates every authenticated route. It only proves the token
// is valid; loading the admin, partner and team behind it is the identity
// middleware's job.
type AuthMiddleware struct {
	tokenSvc *auth.TokenService
}

func NewAuthMiddleware(tokenSvc *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" || strings.ContainsRune(token, ' ') {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "A bearer token is required", nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(token)
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Session token is invalid or expired", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}
