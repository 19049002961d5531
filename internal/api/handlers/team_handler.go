package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/platform/audit"
	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

type TeamHandler struct {
	teamRepo    *repositories.TeamRepository
	adminRepo   *repositories.AdminRepository
	licenseRepo *repositories.LicenseRepository
	auditor     *audit.Logger
}

func NewTeamHandler(teamRepo *repositories.TeamRepository, adminRepo *repositories.AdminRepository, licenseRepo *repositories.LicenseRepository, auditor *audit.Logger) *TeamHandler {
	return &TeamHandler{
		teamRepo:    teamRepo,
		adminRepo:   adminRepo,
		licenseRepo: licenseRepo,
		auditor:     auditor,
	}
}

type CreateTeamRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if identity.Team != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Admin already belongs to a team", nil)
		return
	}

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Team name is required", nil)
		return
	}

	now := time.Now().Unix()
	team := &models.Team{
		ID:        "team_" + uuid.NewString(),
		Name:      req.Name,
		Domain:    req.Domain,
		OwnerID:   identity.Admin.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.teamRepo.Create(team); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create team", nil)
		return
	}
	if err := h.adminRepo.SetTeam(identity.Admin.ID, team.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to join team", nil)
		return
	}

	h.auditor.Log(r.Context(), team.ID, identity.Admin.ID, "teams.created", "team", team.ID, map[string]interface{}{
		"name": team.Name,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(team)
}

func (h *TeamHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if identity.Team == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Admin does not belong to a team", nil)
		return
	}

	assigned, err := h.licenseRepo.CountByTeam(identity.Team.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"team":      identity.Team,
		"assigned":  assigned,
		"available": identity.Team.PurchasedLicenseCount - assigned,
	})
}

type UpdateSeatsRequest struct {
	PurchasedLicenseCount int `json:"purchased_license_count"`
}

// UpdateSeats changes a team's purchased seat ceiling. Restricted to
// platform operators through the router's role gate.
func (h *TeamHandler) UpdateSeats(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	teamID := params.ByName("team_id")

	var req UpdateSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.PurchasedLicenseCount < 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Seat count cannot be negative", nil)
		return
	}

	team, err := h.teamRepo.GetByID(teamID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if team == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Team not found", nil)
		return
	}

	if err := h.teamRepo.UpdateSeats(team.ID, req.PurchasedLicenseCount); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update seats", nil)
		return
	}
	team.PurchasedLicenseCount = req.PurchasedLicenseCount

	h.auditor.Log(r.Context(), team.ID, identity.Admin.ID, "teams.seats_updated", "team", team.ID, map[string]interface{}{
		"purchased_license_count": req.PurchasedLicenseCount,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(team)
}
