package middleware

import (
	"context"
	"net/http"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/platform/auth"
	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

// IdentityContext is the caller resolved from the session token: a fresh
// admin row plus their partner and team, when they have them.
type IdentityContext struct {
	Admin   *models.Admin
	Partner *models.Partner
	Team    *models.Team
}

type IdentityMiddleware struct {
	adminRepo   *repositories.AdminRepository
	partnerRepo *repositories.PartnerRepository
	teamRepo    *repositories.TeamRepository
}

func NewIdentityMiddleware(adminRepo *repositories.AdminRepository, partnerRepo *repositories.PartnerRepository, teamRepo *repositories.TeamRepository) *IdentityMiddleware {
	return &IdentityMiddleware{
		adminRepo:   adminRepo,
		partnerRepo: partnerRepo,
		teamRepo:    teamRepo,
	}
}

// Handle loads the caller's admin, partner and team from the database rather
// than trusting stale claims. A partner_admin or member without a partner is
// still pending approval and gets no further than here.
func (m *IdentityMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
			return
		}

		admin, err := m.adminRepo.GetByID(claims.AdminID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load admin", nil)
			return
		}
		if admin == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Admin not found", nil)
			return
		}

		identity := &IdentityContext{Admin: admin}

		if admin.PartnerID != nil {
			partner, err := m.partnerRepo.GetByID(*admin.PartnerID)
			if err != nil {
				errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load partner", nil)
				return
			}
			identity.Partner = partner
		}

		if admin.Role != models.RoleMoilAdmin {
			if identity.Partner == nil {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Partner access pending approval", nil)
				return
			}
			if identity.Partner.Status != models.PartnerStatusActive {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Partner is not active", nil)
				return
			}
		}

		if admin.TeamID != nil {
			team, err := m.teamRepo.GetByID(*admin.TeamID)
			if err != nil {
				errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load team", nil)
				return
			}
			identity.Team = team
		}

		ctx := context.WithValue(r.Context(), apiContext.Identity, identity)
		next(w, r.WithContext(ctx))
	}
}
