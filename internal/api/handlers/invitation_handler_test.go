package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apiContext "partnerhub/internal/api/context"
	"partnerhub/internal/api/middleware"
	"partnerhub/internal/engine/notify"
	"partnerhub/internal/platform/config"
	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

func setupInvitationDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}

	_, err = db.Exec(`
	CREATE TABLE team_invitations (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		token TEXT UNIQUE NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE admins (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		first_name TEXT DEFAULT '',
		last_name TEXT DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		partner_id TEXT,
		team_id TEXT,
		last_login_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`)
	if err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

func seedInvitation(t *testing.T, db *sql.DB, token, email, status string, expiresAt int64) {
	_, err := db.Exec(`
		INSERT INTO team_invitations (id, team_id, email, role, token, status, expires_at, created_at, updated_at)
		VALUES ('inv_1', 'team_1', ?, 'member', ?, ?, ?, ?, ?)
	`, email, token, status, expiresAt, time.Now().Unix(), time.Now().Unix())
	if err != nil {
		t.Fatalf("Failed to seed invitation: %v", err)
	}
}

func newInvitationHandler(db *sql.DB) *InvitationHandler {
	dispatcher := notify.NewDispatcher(stubSender{},
		config.AppConfig{BaseURL: "https://app.example.com"},
		config.BrandingConfig{ProgramName: "PartnerHub"},
	)
	return NewInvitationHandler(
		repositories.NewInvitationRepository(db),
		repositories.NewAdminRepository(db),
		dispatcher,
	)
}

func acceptRequest(body string, admin *models.Admin) *http.Request {
	req, _ := http.NewRequest("POST", "/", strings.NewReader(body))
	identity := &middleware.IdentityContext{Admin: admin}
	return req.WithContext(context.WithValue(req.Context(), apiContext.Identity, identity))
}

func TestInvitationHandler_Accept(t *testing.T) {
	db := setupInvitationDB(t)
	defer db.Close()

	h := newInvitationHandler(db)

	_, err := db.Exec(`
		INSERT INTO admins (id, email, password_hash, role, created_at, updated_at)
		VALUES ('adm_1', 'invitee@acme.com', 'hash', 'member', ?, ?)
	`, time.Now().Unix(), time.Now().Unix())
	if err != nil {
		t.Fatalf("Failed to seed admin: %v", err)
	}

	seedInvitation(t, db, "tok_1", "invitee@acme.com", models.InvitationStatusPending, time.Now().Add(time.Hour).Unix())

	// Case-insensitive email match.
	admin := &models.Admin{ID: "adm_1", Email: "Invitee@Acme.COM"}
	rr := httptest.NewRecorder()
	h.Accept(rr, acceptRequest(`{"token": "tok_1"}`, admin))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var teamID sql.NullString
	db.QueryRow(`SELECT team_id FROM admins WHERE id = 'adm_1'`).Scan(&teamID)
	if !teamID.Valid || teamID.String != "team_1" {
		t.Errorf("Expected admin joined to team_1, got %v", teamID)
	}

	var status string
	db.QueryRow(`SELECT status FROM team_invitations WHERE id = 'inv_1'`).Scan(&status)
	if status != models.InvitationStatusAccepted {
		t.Errorf("Expected accepted, got %s", status)
	}
}

func TestInvitationHandler_AcceptRejectsEmailMismatch(t *testing.T) {
	db := setupInvitationDB(t)
	defer db.Close()

	h := newInvitationHandler(db)
	seedInvitation(t, db, "tok_1", "invitee@acme.com", models.InvitationStatusPending, time.Now().Add(time.Hour).Unix())

	admin := &models.Admin{ID: "adm_2", Email: "someone-else@acme.com"}
	rr := httptest.NewRecorder()
	h.Accept(rr, acceptRequest(`{"token": "tok_1"}`, admin))

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}
}

func TestInvitationHandler_AcceptRejectsExpired(t *testing.T) {
	db := setupInvitationDB(t)
	defer db.Close()

	h := newInvitationHandler(db)
	seedInvitation(t, db, "tok_1", "invitee@acme.com", models.InvitationStatusPending, time.Now().Add(-time.Hour).Unix())

	admin := &models.Admin{ID: "adm_1", Email: "invitee@acme.com"}
	rr := httptest.NewRecorder()
	h.Accept(rr, acceptRequest(`{"token": "tok_1"}`, admin))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestInvitationHandler_AcceptRejectsSecondTeam(t *testing.T) {
	db := setupInvitationDB(t)
	defer db.Close()

	h := newInvitationHandler(db)
	seedInvitation(t, db, "tok_1", "invitee@acme.com", models.InvitationStatusPending, time.Now().Add(time.Hour).Unix())

	existing := "team_other"
	admin := &models.Admin{ID: "adm_1", Email: "invitee@acme.com", TeamID: &existing}
	rr := httptest.NewRecorder()
	h.Accept(rr, acceptRequest(`{"token": "tok_1"}`, admin))

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", rr.Code)
	}
}
