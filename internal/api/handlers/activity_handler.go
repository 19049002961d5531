package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"partnerhub/internal/pkg/errors"
	"partnerhub/internal/platform/audit"
)

type ActivityHandler struct {
	auditor *audit.Logger
}

func NewActivityHandler(auditor *audit.Logger) *ActivityHandler {
	return &ActivityHandler{auditor: auditor}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	if identity.Team == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Admin does not belong to a team", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.auditor.ListByTeam(identity.Team.ID, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
