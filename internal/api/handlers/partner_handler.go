package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

type PartnerHandler struct {
	partnerRepo *repositories.PartnerRepository
	adminRepo   *repositories.AdminRepository
}

func NewPartnerHandler(partnerRepo *repositories.PartnerRepository, adminRepo *repositories.AdminRepository) *PartnerHandler {
	return &PartnerHandler{
		partnerRepo: partnerRepo,
		adminRepo:   adminRepo,
	}
}

type RequestAccessRequest struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	FullName     string `json:"full_name"`
	SupportEmail string `json:"support_email"`
}

// RequestAccess is the self-service path: the partner record is created in
// pending state and stays invisible until a platform operator approves it.
func (h *PartnerHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req RequestAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" || req.Domain == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Name and domain are required", nil)
		return
	}

	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	existing, err := h.partnerRepo.GetByDomain(domain)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "A partner already exists for this domain", nil)
		return
	}

	now := time.Now().Unix()
	partner := &models.Partner{
		ID:           "ptr_" + uuid.NewString(),
		Slug:         slugify(req.Name),
		Name:         req.Name,
		Domain:       domain,
		Status:       models.PartnerStatusPending,
		FullName:     req.FullName,
		SupportEmail: req.SupportEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.partnerRepo.Create(partner); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create partner", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(partner)
}

// Approve flips a pending partner to active and retroactively links every
// unaffiliated admin whose email domain matches. Platform operators only.
func (h *PartnerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	partnerID := params.ByName("partner_id")

	partner, err := h.partnerRepo.GetByID(partnerID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if partner == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Partner not found", nil)
		return
	}
	if partner.Status != models.PartnerStatusPending {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Partner is not pending approval", nil)
		return
	}

	if err := h.partnerRepo.UpdateStatus(partner.ID, models.PartnerStatusActive); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to approve partner", nil)
		return
	}
	partner.Status = models.PartnerStatusActive

	linked, err := h.adminRepo.LinkByDomain(partner.ID, partner.Domain)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to link admins", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"partner":       partner,
		"admins_linked": linked,
	})
}

func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	partners, err := h.partnerRepo.List(r.URL.Query().Get("status"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if partners == nil {
		partners = []*models.Partner{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(partners)
}

func (h *PartnerHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if identity.Partner == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "No partner affiliation", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(identity.Partner)
}

type UpdateBrandingRequest struct {
	PrimaryColor   *string `json:"primary_color"`
	SecondaryColor *string `json:"secondary_color"`
	LogoURL        *string `json:"logo_url"`
	LogoInitial    *string `json:"logo_initial"`
	ProgramName    *string `json:"program_name"`
	FullName       *string `json:"full_name"`
	SupportEmail   *string `json:"support_email"`
}

func (h *PartnerHandler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if identity.Partner == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "No partner affiliation", nil)
		return
	}

	var req UpdateBrandingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	partner := identity.Partner
	if req.PrimaryColor != nil {
		partner.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		partner.SecondaryColor = *req.SecondaryColor
	}
	if req.LogoURL != nil {
		partner.LogoURL = *req.LogoURL
	}
	if req.LogoInitial != nil {
		partner.LogoInitial = *req.LogoInitial
	}
	if req.ProgramName != nil {
		partner.ProgramName = *req.ProgramName
	}
	if req.FullName != nil {
		partner.FullName = *req.FullName
	}
	if req.SupportEmail != nil {
		partner.SupportEmail = *req.SupportEmail
	}

	if err := h.partnerRepo.UpdateBranding(partner); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update branding", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(partner)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
