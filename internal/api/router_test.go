package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/platform/auth"
	"partnerhub/internal/platform/models"
)

func requestWithRole(role string) *http.Request {
	req, _ := http.NewRequest("PATCH", "/", nil)
	claims := &auth.Claims{AdminID: "adm_1", Role: role}
	return req.WithContext(context.WithValue(req.Context(), apiContext.Claims, claims))
}

func TestRequireRole(t *testing.T) {
	handler := requireRole(models.RoleMoilAdmin)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	handler(rr, requestWithRole(models.RoleMoilAdmin))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for moil_admin, got %d", rr.Code)
	}

	// Seat ceilings and partner approval are operator-only actions.
	rr = httptest.NewRecorder()
	handler(rr, requestWithRole(models.RolePartnerAdmin))
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for partner_admin, got %d", rr.Code)
	}
}

func TestRequireRoleMultiple(t *testing.T) {
	handler := requireRole(models.RolePartnerAdmin, models.RoleMoilAdmin)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	handler(rr, requestWithRole(models.RolePartnerAdmin))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for partner_admin, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler(rr, requestWithRole(models.RoleMember))
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for member, got %d", rr.Code)
	}
}
