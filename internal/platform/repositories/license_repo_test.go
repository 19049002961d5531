package repositories

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"partnerhub/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}

	query := `
	CREATE TABLE licenses (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		admin_id TEXT NOT NULL,
		team_id TEXT,
		business_name TEXT DEFAULT '',
		business_type TEXT DEFAULT '',
		is_activated INTEGER NOT NULL DEFAULT 0,
		activated_at INTEGER,
		message_id TEXT,
		email_status TEXT,
		performed_by TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return db
}

func makeLicense(id, email string, teamID *string) *models.License {
	status := models.EmailStatusQueued
	return &models.License{
		ID:          id,
		Email:       email,
		AdminID:     "adm_1",
		TeamID:      teamID,
		EmailStatus: &status,
		PerformedBy: "adm_1",
		CreatedAt:   time.Now().Unix(),
	}
}

func TestLicenseRepository_InsertBatchAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewLicenseRepository(db)
	teamID := "team_1"

	err := repo.InsertBatch([]*models.License{
		makeLicense("lic_1", "a@x.com", &teamID),
		makeLicense("lic_2", "b@y.com", nil),
	})
	if err != nil {
		t.Fatalf("Failed to insert batch: %v", err)
	}

	lic, err := repo.GetByID("lic_1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if lic == nil {
		t.Fatal("Expected license, got nil")
	}
	if lic.Email != "a@x.com" {
		t.Errorf("Expected a@x.com, got %s", lic.Email)
	}
	if lic.TeamID == nil || *lic.TeamID != "team_1" {
		t.Errorf("Expected team_1, got %v", lic.TeamID)
	}
	if lic.EmailStatus == nil || *lic.EmailStatus != models.EmailStatusQueued {
		t.Errorf("Expected queued status, got %v", lic.EmailStatus)
	}

	solo, err := repo.GetByID("lic_2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if solo.TeamID != nil {
		t.Errorf("Expected nil team id, got %v", *solo.TeamID)
	}

	missing, err := repo.GetByID("lic_nope")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing license")
	}
}

func TestLicenseRepository_FindEmailsGlobal(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewLicenseRepository(db)
	myTeam := "team_1"
	otherTeam := "team_2"

	if err := repo.InsertBatch([]*models.License{
		makeLicense("lic_1", "mine@x.com", &myTeam),
		makeLicense("lic_2", "theirs@x.com", &otherTeam),
		makeLicense("lic_3", "solo@x.com", nil),
	}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	scope := Scope{TeamID: &myTeam, AdminID: "adm_1"}
	found, err := repo.FindEmailsGlobal(scope, []string{"mine@x.com", "theirs@x.com", "solo@x.com", "free@x.com"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Rows in the caller's own team are excluded; everything else counts.
	if len(found) != 2 {
		t.Fatalf("Expected 2 hits, got %v", found)
	}
	hits := map[string]bool{}
	for _, email := range found {
		hits[email] = true
	}
	if !hits["theirs@x.com"] || !hits["solo@x.com"] {
		t.Errorf("Expected theirs@x.com and solo@x.com, got %v", found)
	}

	// Solo caller: only their own team-less rows are excluded.
	soloScope := Scope{AdminID: "adm_1"}
	found, err = repo.FindEmailsGlobal(soloScope, []string{"mine@x.com", "solo@x.com"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(found) != 1 || found[0] != "mine@x.com" {
		t.Errorf("Expected [mine@x.com], got %v", found)
	}
}

func TestLicenseRepository_FindEmailsInScope(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewLicenseRepository(db)
	teamID := "team_1"
	otherTeam := "team_2"

	if err := repo.InsertBatch([]*models.License{
		makeLicense("lic_1", "a@x.com", &teamID),
		makeLicense("lic_2", "b@x.com", &otherTeam),
		makeLicense("lic_3", "c@x.com", nil),
	}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	found, err := repo.FindEmailsInScope(Scope{TeamID: &teamID, AdminID: "adm_1"}, []string{"a@x.com", "b@x.com", "c@x.com"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(found) != 1 || found[0] != "a@x.com" {
		t.Errorf("Expected [a@x.com], got %v", found)
	}

	found, err = repo.FindEmailsInScope(Scope{AdminID: "adm_1"}, []string{"a@x.com", "c@x.com"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(found) != 1 || found[0] != "c@x.com" {
		t.Errorf("Expected [c@x.com], got %v", found)
	}
}

func TestLicenseRepository_UpdateEmailStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewLicenseRepository(db)
	if err := repo.InsertBatch([]*models.License{makeLicense("lic_1", "a@x.com", nil)}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	messageID := "msg-abc"
	if err := repo.UpdateEmailStatus("lic_1", &messageID, models.EmailStatusSent); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	lic, _ := repo.GetByID("lic_1")
	if lic.MessageID == nil || *lic.MessageID != "msg-abc" {
		t.Errorf("Expected msg-abc, got %v", lic.MessageID)
	}
	if lic.EmailStatus == nil || *lic.EmailStatus != models.EmailStatusSent {
		t.Errorf("Expected sent, got %v", lic.EmailStatus)
	}

	if err := repo.UpdateEmailStatus("lic_1", nil, models.EmailStatusFailed); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	lic, _ = repo.GetByID("lic_1")
	if lic.MessageID != nil {
		t.Errorf("Expected nil message id, got %v", *lic.MessageID)
	}
}

func TestLicenseRepository_ListAndStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewLicenseRepository(db)
	teamID := "team_1"

	activated := makeLicense("lic_1", "done@x.com", &teamID)
	activated.IsActivated = true
	activated.EmailStatus = nil
	activated.BusinessName = "Done LLC"

	if err := repo.InsertBatch([]*models.License{
		activated,
		makeLicense("lic_2", "pending@x.com", &teamID),
		makeLicense("lic_3", "outside@x.com", nil),
	}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	scope := Scope{TeamID: &teamID, AdminID: "adm_1"}

	rows, total, err := repo.List(scope, ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("Expected 2 team rows, got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(scope, ListFilter{Status: "activated", Limit: 10})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if total != 1 || rows[0].ID != "lic_1" {
		t.Errorf("Expected lic_1 only, got total=%d", total)
	}

	rows, total, err = repo.List(scope, ListFilter{Search: "Done", Limit: 10})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if total != 1 || rows[0].BusinessName != "Done LLC" {
		t.Errorf("Expected business name match, got total=%d", total)
	}

	stats, err := repo.Stats(scope)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.Assigned != 2 || stats.Activated != 1 || stats.Pending != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestLicenseRepository_CountAndDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewLicenseRepository(db)
	teamID := "team_1"

	if err := repo.InsertBatch([]*models.License{
		makeLicense("lic_1", "a@x.com", &teamID),
		makeLicense("lic_2", "b@x.com", &teamID),
	}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	count, err := repo.CountByTeam(teamID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2, got %d", count)
	}

	if err := repo.Delete("lic_1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	count, _ = repo.CountByTeam(teamID)
	if count != 1 {
		t.Errorf("Expected 1 after delete, got %d", count)
	}
}

func TestLicenseRepository_FindStaleQueued(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewLicenseRepository(db)

	stale := makeLicense("lic_old", "old@x.com", nil)
	stale.CreatedAt = time.Now().Add(-2 * time.Hour).Unix()
	fresh := makeLicense("lic_new", "new@x.com", nil)

	if err := repo.InsertBatch([]*models.License{stale, fresh}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	ids, err := repo.FindStaleQueued(time.Now().Add(-time.Hour).Unix())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "lic_old" {
		t.Errorf("Expected [lic_old], got %v", ids)
	}
}
