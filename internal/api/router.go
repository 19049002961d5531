package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/api/handlers"
	"partnerhub/internal/api/middleware"
	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/platform/auth"
	"partnerhub/internal/platform/models"
)

type Dependencies struct {
	AuthHandler        *handlers.AuthHandler
	LicenseHandler     *handlers.LicenseHandler
	TeamHandler        *handlers.TeamHandler
	InvitationHandler  *handlers.InvitationHandler
	PartnerHandler     *handlers.PartnerHandler
	ActivityHandler    *handlers.ActivityHandler
	HealthHandler      *handlers.HealthHandler
	MetricsHandler     *handlers.MetricsHandler
	AuthMiddleware     *middleware.AuthMiddleware
	IdentityMiddleware *middleware.IdentityMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Ops
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Authentication routes
	router.POST("/api/v1/auth/signup", wrap(deps.AuthHandler.Signup))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))
	router.POST("/api/v1/auth/refresh", wrap(deps.AuthHandler.Refresh))
	router.POST("/api/v1/auth/logout", wrap(deps.AuthHandler.Logout))

	// Self-service partner onboarding
	router.POST("/api/v1/partners/request-access", wrap(deps.PartnerHandler.RequestAccess))

	// Middleware references
	authMid := deps.AuthMiddleware
	identityMid := deps.IdentityMiddleware

	// License management: the single-add, bulk-add and import entry points
	// all feed the same allocation workflow.
	router.POST("/api/v1/licenses/add",
		chain(deps.LicenseHandler.Add, authMid.Handle, identityMid.Handle, middleware.RateLimit("api_write")))
	router.POST("/api/v1/licenses/add-multiple",
		chain(deps.LicenseHandler.AddMultiple, authMid.Handle, identityMid.Handle, middleware.RateLimit("api_write")))
	router.POST("/api/v1/licenses/import",
		chain(deps.LicenseHandler.Import, authMid.Handle, identityMid.Handle, middleware.RateLimit("import")))
	router.POST("/api/v1/licenses/resend",
		chain(deps.LicenseHandler.Resend, authMid.Handle, identityMid.Handle, middleware.RateLimit("api_write")))
	router.GET("/api/v1/licenses",
		chain(deps.LicenseHandler.List, authMid.Handle, identityMid.Handle, middleware.RateLimit("api_read")))
	router.DELETE("/api/v1/licenses/:license_id",
		chain(deps.LicenseHandler.Delete, authMid.Handle, identityMid.Handle, middleware.RateLimit("api_write")))
	router.GET("/api/v1/licenses/:license_id/qr",
		chain(deps.LicenseHandler.QRCode, authMid.Handle, identityMid.Handle, middleware.RateLimit("api_read")))

	// Team management
	router.POST("/api/v1/teams",
		chain(deps.TeamHandler.Create, authMid.Handle, identityMid.Handle, requireRole(models.RolePartnerAdmin, models.RoleMoilAdmin)))
	router.GET("/api/v1/teams/current",
		chain(deps.TeamHandler.GetCurrent, authMid.Handle, identityMid.Handle))
	router.PATCH("/api/v1/teams/:team_id/seats",
		chain(deps.TeamHandler.UpdateSeats, authMid.Handle, identityMid.Handle, requireRole(models.RoleMoilAdmin)))

	// Invitations
	router.POST("/api/v1/invitations",
		chain(deps.InvitationHandler.Create, authMid.Handle, identityMid.Handle, requireRole(models.RolePartnerAdmin, models.RoleMoilAdmin)))
	router.GET("/api/v1/invitations",
		chain(deps.InvitationHandler.List, authMid.Handle, identityMid.Handle))
	router.DELETE("/api/v1/invitations/:invitation_id",
		chain(deps.InvitationHandler.Revoke, authMid.Handle, identityMid.Handle, requireRole(models.RolePartnerAdmin, models.RoleMoilAdmin)))
	router.POST("/api/v1/invitations/accept",
		chain(deps.InvitationHandler.Accept, authMid.Handle, identityMid.Handle))

	// Partner administration
	router.GET("/api/v1/partners",
		chain(deps.PartnerHandler.List, authMid.Handle, identityMid.Handle, requireRole(models.RoleMoilAdmin)))
	router.POST("/api/v1/partners/approve/:partner_id",
		chain(deps.PartnerHandler.Approve, authMid.Handle, identityMid.Handle, requireRole(models.RoleMoilAdmin)))
	router.GET("/api/v1/partners/current",
		chain(deps.PartnerHandler.GetCurrent, authMid.Handle, identityMid.Handle))
	router.PATCH("/api/v1/partners/current",
		chain(deps.PartnerHandler.UpdateBranding, authMid.Handle, identityMid.Handle, requireRole(models.RolePartnerAdmin, models.RoleMoilAdmin)))

	// Activity
	router.GET("/api/v1/activity",
		chain(deps.ActivityHandler.List, authMid.Handle, identityMid.Handle))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
