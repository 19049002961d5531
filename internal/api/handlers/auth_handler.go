package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/pkg/validator"
	"partnerhub/internal/platform/auth"
	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

type AuthHandler struct {
	adminRepo   *repositories.AdminRepository
	partnerRepo *repositories.PartnerRepository
	tokenSvc    *auth.TokenService
}

func NewAuthHandler(adminRepo *repositories.AdminRepository, partnerRepo *repositories.PartnerRepository, tokenSvc *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		adminRepo:   adminRepo,
		partnerRepo: partnerRepo,
		tokenSvc:    tokenSvc,
	}
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AuthResponse struct {
	Admin        *models.Admin `json:"admin"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
}

// Signup creates an admin account. When the email's domain matches an active
// partner the account is linked immediately; otherwise the admin stays
// unaffiliated ("pending") until a matching partner is approved.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if !validator.IsCandidateEmail(req.Email) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "A valid email address is required", nil)
		return
	}
	if len(req.Password) < 8 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Password must be at least 8 characters", nil)
		return
	}

	email := validator.Normalize(req.Email)

	existing, err := h.adminRepo.GetByEmail(email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Account already exists", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	admin := &models.Admin{
		ID:           "adm_" + uuid.NewString(),
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashedPassword),
		Role:         models.RolePartnerAdmin,
		CreatedAt:    time.Now().Unix(),
		UpdatedAt:    time.Now().Unix(),
	}

	// Auto-link by email domain
	partner, err := h.partnerRepo.GetByDomain(validator.Domain(email))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if partner != nil && partner.Status == models.PartnerStatusActive {
		admin.PartnerID = &partner.ID
		admin.Partner = partner
	}

	if err := h.adminRepo.Create(admin); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create account", nil)
		return
	}

	h.writeTokens(w, http.StatusCreated, admin)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	admin, err := h.adminRepo.GetByEmail(validator.Normalize(req.Email))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if admin == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	h.adminRepo.UpdateLastLogin(admin.ID, time.Now().Unix())

	if admin.PartnerID != nil {
		partner, err := h.partnerRepo.GetByID(*admin.PartnerID)
		if err == nil {
			admin.Partner = partner
		}
	}

	h.writeTokens(w, http.StatusOK, admin)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	claims, err := h.tokenSvc.ValidateToken(req.RefreshToken)
	if err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid refresh token", nil)
		return
	}

	admin, err := h.adminRepo.GetByID(claims.Subject)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if admin == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Admin not found", nil)
		return
	}

	partnerID := ""
	if admin.PartnerID != nil {
		partnerID = *admin.PartnerID
	}
	accessToken, err := h.tokenSvc.GenerateAccessToken(admin.ID, partnerID, admin.Role, admin.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"access_token": accessToken})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Token invalidation happens client-side; refresh tokens are short-lived.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, status int, admin *models.Admin) {
	partnerID := ""
	if admin.PartnerID != nil {
		partnerID = *admin.PartnerID
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(admin.ID, partnerID, admin.Role, admin.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	refreshToken, err := h.tokenSvc.GenerateRefreshToken(admin.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(AuthResponse{
		Admin:        admin,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
