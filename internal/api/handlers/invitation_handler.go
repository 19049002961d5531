package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/engine/notify"
	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/pkg/validator"
	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

const invitationTTL = 7 * 24 * time.Hour

type InvitationHandler struct {
	invitationRepo *repositories.InvitationRepository
	adminRepo      *repositories.AdminRepository
	dispatcher     *notify.Dispatcher
}

func NewInvitationHandler(invitationRepo *repositories.InvitationRepository, adminRepo *repositories.AdminRepository, dispatcher *notify.Dispatcher) *InvitationHandler {
	return &InvitationHandler{
		invitationRepo: invitationRepo,
		adminRepo:      adminRepo,
		dispatcher:     dispatcher,
	}
}

type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if identity.Team == nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Create a team before inviting members", nil)
		return
	}

	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if !validator.IsCandidateEmail(req.Email) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "A valid email address is required", nil)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	now := time.Now()
	inv := &models.TeamInvitation{
		ID:        "inv_" + uuid.NewString(),
		TeamID:    identity.Team.ID,
		Email:     validator.Normalize(req.Email),
		Role:      role,
		Token:     uuid.NewString(),
		Status:    models.InvitationStatusPending,
		ExpiresAt: now.Add(invitationTTL).Unix(),
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	if err := h.invitationRepo.Create(inv); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create invitation", nil)
		return
	}

	// The invite email is best-effort: the invitation exists either way and
	// its link can be shared manually.
	if _, err := h.dispatcher.SendInvitation(r.Context(), identity.Partner, inv, identity.Team.Name); err != nil {
		log.Warn().Err(err).Str("invitation_id", inv.ID).Msg("invitation email failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inv)
}

func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if identity.Team == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Admin does not belong to a team", nil)
		return
	}

	invitations, err := h.invitationRepo.ListByTeam(identity.Team.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if invitations == nil {
		invitations = []*models.TeamInvitation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invitations)
}

func (h *InvitationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	invitationID := params.ByName("invitation_id")

	inv, err := h.invitationRepo.GetByID(invitationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if inv == nil || identity.Team == nil || inv.TeamID != identity.Team.ID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Invitation not found", nil)
		return
	}
	if inv.Status != models.InvitationStatusPending {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Only pending invitations can be revoked", nil)
		return
	}

	if err := h.invitationRepo.UpdateStatus(inv.ID, models.InvitationStatusRevoked); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to revoke invitation", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Invitation revoked"})
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

// Accept joins the calling admin to the invited team. The caller's email
// must match the invitation's, case-insensitively, and an admin may belong
// to at most one team.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var req AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	inv, err := h.invitationRepo.GetByToken(req.Token)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if inv == nil || inv.Status != models.InvitationStatusPending || inv.ExpiresAt < time.Now().Unix() {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid or expired invitation", nil)
		return
	}

	if !strings.EqualFold(inv.Email, identity.Admin.Email) {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Invitation was issued for a different email address", nil)
		return
	}
	if identity.Admin.TeamID != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Admin already belongs to a team", nil)
		return
	}

	if err := h.adminRepo.SetTeam(identity.Admin.ID, inv.TeamID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to join team", nil)
		return
	}
	if err := h.invitationRepo.UpdateStatus(inv.ID, models.InvitationStatusAccepted); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update invitation", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Invitation accepted",
		"team_id": inv.TeamID,
	})
}
