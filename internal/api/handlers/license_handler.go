package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/api/middleware"
	"partnerhub/internal/engine/licenses"
	"partnerhub/internal/engine/notify"
	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/platform/audit"
	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

const maxImportSize = 5 << 20 // 5 MiB upload cap

type LicenseHandler struct {
	svc         *licenses.Service
	licenseRepo *repositories.LicenseRepository
	dispatcher  *notify.Dispatcher
	auditor     *audit.Logger
}

func NewLicenseHandler(svc *licenses.Service, licenseRepo *repositories.LicenseRepository, dispatcher *notify.Dispatcher, auditor *audit.Logger) *LicenseHandler {
	return &LicenseHandler{
		svc:         svc,
		licenseRepo: licenseRepo,
		dispatcher:  dispatcher,
		auditor:     auditor,
	}
}

func identityFrom(r *http.Request) *middleware.IdentityContext {
	return r.Context().Value(apiContext.Identity).(*middleware.IdentityContext)
}

func callerFrom(identity *middleware.IdentityContext) *licenses.Caller {
	return &licenses.Caller{
		Admin:   identity.Admin,
		Partner: identity.Partner,
		Team:    identity.Team,
	}
}

// writeAllocationError maps the engine's hard rejections onto HTTP codes.
func writeAllocationError(w http.ResponseWriter, err error) {
	var quotaErr *licenses.QuotaExceededError
	if stderrors.As(err, &quotaErr) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeQuotaExceeded, quotaErr.Error(), map[string]interface{}{
			"available": quotaErr.Available,
		})
		return
	}

	var dupErr *licenses.GlobalDuplicateError
	if stderrors.As(err, &dupErr) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeDuplicateLicense, "Some emails already hold a license under another partner", map[string]interface{}{
			"emails": dupErr.Emails,
		})
		return
	}

	errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to allocate licenses", nil)
}

type AddLicenseRequest struct {
	Email string `json:"email"`
}

func (h *LicenseHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var req AddLicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	batch := licenses.Normalize([]string{req.Email})
	if len(batch.Candidates) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "A valid email address is required", nil)
		return
	}

	result, err := h.svc.AllocateBatch(r.Context(), callerFrom(identity), batch)
	if err != nil {
		writeAllocationError(w, err)
		return
	}

	if result.Success == 0 {
		message := "License could not be created"
		if len(result.Errors) > 0 {
			message = result.Errors[0]
		}
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeConflict, message, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "License created",
		"email_sent": result.EmailsSent == 1,
		"license":    result.Licenses[0],
	})
}

type AddMultipleRequest struct {
	Emails []string `json:"emails"`
}

func (h *LicenseHandler) AddMultiple(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var req AddMultipleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	batch := licenses.Normalize(req.Emails)
	if len(batch.Candidates) == 0 && len(batch.Invalid) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No email addresses provided", nil)
		return
	}

	result, err := h.svc.AllocateBatch(r.Context(), callerFrom(identity), batch)
	if err != nil {
		writeAllocationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Import accepts a CSV or xlsx upload. Both formats share the same shape: a
// header row, then one email in the first column of each data row.
func (h *LicenseHandler) Import(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Missing file upload", nil)
		return
	}
	defer file.Close()

	var batch licenses.Batch
	if strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		batch, err = parseSpreadsheet(file)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Could not read spreadsheet", nil)
			return
		}
	} else {
		content, err := io.ReadAll(io.LimitReader(file, maxImportSize))
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Could not read file", nil)
			return
		}
		batch = licenses.ParseCSV(string(content))
	}

	if len(batch.Candidates) == 0 && len(batch.Invalid) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No email addresses found in file", nil)
		return
	}

	result, err := h.svc.AllocateBatch(r.Context(), callerFrom(identity), batch)
	if err != nil {
		writeAllocationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func parseSpreadsheet(file io.Reader) (licenses.Batch, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return licenses.Batch{}, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return licenses.Batch{}, nil
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return licenses.Batch{}, err
	}
	return licenses.ParseRows(rows), nil
}

type ResendRequest struct {
	LicenseID string `json:"license_id"`
}

func (h *LicenseHandler) Resend(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var req ResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	lic, err := h.licenseRepo.GetByID(req.LicenseID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if lic == nil || !h.canAccess(identity, lic) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "License not found", nil)
		return
	}
	if lic.IsActivated {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "License is already activated", nil)
		return
	}

	messageID, sendErr := h.dispatcher.SendActivation(r.Context(), identity.Partner, lic)
	status := models.EmailStatusSent
	var messageIDPtr *string
	if sendErr != nil {
		status = models.EmailStatusFailed
	} else {
		messageIDPtr = &messageID
	}
	if err := h.licenseRepo.UpdateEmailStatus(lic.ID, messageIDPtr, status); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	lic.MessageID = messageIDPtr
	lic.EmailStatus = &status

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Activation email resent",
		"email_sent": sendErr == nil,
		"license":    lic,
	})
}

func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	scope := repositories.Scope{AdminID: identity.Admin.ID}
	if identity.Team != nil {
		scope.TeamID = &identity.Team.ID
	}

	filter := repositories.ListFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	results, total, err := h.licenseRepo.List(scope, filter)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if results == nil {
		results = []*models.License{}
	}

	stats, err := h.licenseRepo.Stats(scope)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	statsOut := map[string]interface{}{
		"assigned":  stats.Assigned,
		"activated": stats.Activated,
		"pending":   stats.Pending,
	}
	if identity.Team != nil {
		statsOut["purchased"] = identity.Team.PurchasedLicenseCount
		statsOut["available"] = identity.Team.PurchasedLicenseCount - stats.Assigned
	}

	totalPages := (total + limit - 1) / limit

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"licenses": results,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
		"stats": statsOut,
	})
}

func (h *LicenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	licenseID := params.ByName("license_id")

	lic, err := h.licenseRepo.GetByID(licenseID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if lic == nil || !h.canAccess(identity, lic) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "License not found", nil)
		return
	}

	if err := h.licenseRepo.Delete(lic.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	if identity.Team != nil {
		h.auditor.Log(r.Context(), identity.Team.ID, identity.Admin.ID, "licenses.deleted", "license", lic.ID, map[string]interface{}{
			"email": lic.Email,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "License deleted"})
}

// QRCode renders the license's activation URL as a PNG, for handing out at
// in-person onboarding sessions.
func (h *LicenseHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	licenseID := params.ByName("license_id")

	lic, err := h.licenseRepo.GetByID(licenseID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if lic == nil || !h.canAccess(identity, lic) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "License not found", nil)
		return
	}

	png, err := qrcode.Encode(h.dispatcher.ActivationURL(identity.Partner, lic), qrcode.Medium, 256)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate QR code", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// canAccess limits row operations to the caller's own scope: their team's
// rows, or their own solo rows. Platform operators see everything.
func (h *LicenseHandler) canAccess(identity *middleware.IdentityContext, lic *models.License) bool {
	if identity.Admin.Role == models.RoleMoilAdmin {
		return true
	}
	if lic.TeamID != nil {
		return identity.Team != nil && *lic.TeamID == identity.Team.ID
	}
	return lic.AdminID == identity.Admin.ID
}
