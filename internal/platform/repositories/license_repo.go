package repositories

import (
	"database/sql"
	"strings"
	"time"

	"partnerhub/internal/platform/models"
)

// Scope identifies whose licenses a query touches: the caller's team, or the
// caller alone when they have no team (solo mode).
type Scope struct {
	TeamID  *string
	AdminID string
}

type LicenseRepository struct {
	db *sql.DB
}

func NewLicenseRepository(db *sql.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

const licenseColumns = `id, email, admin_id, team_id, business_name, business_type, is_activated, activated_at, message_id, email_status, performed_by, created_at`

// InsertBatch writes every row in a single multi-row INSERT. Statement-level
// atomicity of the store means either all rows land or none do.
func (r *LicenseRepository) InsertBatch(licenses []*models.License) error {
	if len(licenses) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(licenses))
	args := make([]interface{}, 0, len(licenses)*12)
	for _, lic := range licenses {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			lic.ID, lic.Email, lic.AdminID, lic.TeamID,
			lic.BusinessName, lic.BusinessType, lic.IsActivated, lic.ActivatedAt,
			lic.MessageID, lic.EmailStatus, lic.PerformedBy, lic.CreatedAt,
		)
	}

	query := `INSERT INTO licenses (` + licenseColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	_, err := r.db.Exec(query, args...)
	return err
}

// FindEmailsGlobal returns which of the given emails already hold a license
// outside the caller's own scope, anywhere on the platform. Rows inside the
// caller's scope are left to FindEmailsInScope, which carries the softer
// filter policy. One round trip.
func (r *LicenseRepository) FindEmailsGlobal(scope Scope, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	var exclude string
	args := stringArgs(emails)
	if scope.TeamID != nil {
		exclude = `(team_id IS NULL OR team_id <> ?)`
		args = append(args, *scope.TeamID)
	} else {
		exclude = `(team_id IS NOT NULL OR admin_id <> ?)`
		args = append(args, scope.AdminID)
	}

	query := `SELECT email FROM licenses WHERE email IN (` + placeholderList(len(emails)) + `) AND ` + exclude
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEmails(rows)
}

// FindEmailsInScope returns which of the given emails already hold a license
// within the caller's own scope. Batched for efficiency; the partial-filter
// policy lives in the engine, not here.
func (r *LicenseRepository) FindEmailsInScope(scope Scope, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	var query string
	args := stringArgs(emails)
	if scope.TeamID != nil {
		query = `SELECT email FROM licenses WHERE team_id = ? AND email IN (` + placeholderList(len(emails)) + `)`
		args = append([]interface{}{*scope.TeamID}, args...)
	} else {
		query = `SELECT email FROM licenses WHERE team_id IS NULL AND admin_id = ? AND email IN (` + placeholderList(len(emails)) + `)`
		args = append([]interface{}{scope.AdminID}, args...)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEmails(rows)
}

func (r *LicenseRepository) CountByTeam(teamID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM licenses WHERE team_id = ?`, teamID).Scan(&count)
	return count, err
}

func (r *LicenseRepository) GetByID(id string) (*models.License, error) {
	row := r.db.QueryRow(`SELECT `+licenseColumns+` FROM licenses WHERE id = ?`, id)
	lic, err := scanLicense(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return lic, nil
}

// UpdateEmailStatus patches the delivery outcome onto a row after the send
// attempt. messageID may be nil when the provider returned nothing.
func (r *LicenseRepository) UpdateEmailStatus(id string, messageID *string, status string) error {
	_, err := r.db.Exec(`UPDATE licenses SET message_id = ?, email_status = ? WHERE id = ?`, messageID, status, id)
	return err
}

func (r *LicenseRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM licenses WHERE id = ?`, id)
	return err
}

// ListFilter narrows List results. Search matches email or business name,
// Status is "activated", "pending" or empty.
type ListFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}

func (r *LicenseRepository) List(scope Scope, filter ListFilter) ([]*models.License, int, error) {
	where, args := scopeClause(scope)

	if filter.Search != "" {
		where += " AND (email LIKE ? OR business_name LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	switch filter.Status {
	case "activated":
		where += " AND is_activated = 1"
	case "pending":
		where += " AND is_activated = 0"
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM licenses WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE ` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.Query(query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		lic, err := scanLicense(rows)
		if err != nil {
			return nil, 0, err
		}
		licenses = append(licenses, lic)
	}
	return licenses, total, rows.Err()
}

// Stats aggregates the scope's assigned/activated/pending counts. Available
// seats are derived by the caller against the team's purchased ceiling.
type Stats struct {
	Assigned  int `json:"assigned"`
	Activated int `json:"activated"`
	Pending   int `json:"pending"`
}

func (r *LicenseRepository) Stats(scope Scope) (*Stats, error) {
	where, args := scopeClause(scope)

	stats := &Stats{}
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_activated = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN is_activated = 0 THEN 1 ELSE 0 END), 0)
		FROM licenses WHERE `+where, args...).Scan(&stats.Assigned, &stats.Activated, &stats.Pending)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// FindStaleQueued returns ids of rows whose email has sat in "queued" since
// before the cutoff. Used by the background sweeper.
func (r *LicenseRepository) FindStaleQueued(cutoff int64) ([]string, error) {
	rows, err := r.db.Query(`SELECT id FROM licenses WHERE email_status = ? AND created_at < ?`, models.EmailStatusQueued, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scopeClause(scope Scope) (string, []interface{}) {
	if scope.TeamID != nil {
		return "team_id = ?", []interface{}{*scope.TeamID}
	}
	return "team_id IS NULL AND admin_id = ?", []interface{}{scope.AdminID}
}

func placeholderList(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func collectEmails(rows *sql.Rows) ([]string, error) {
	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func scanLicense(s interface {
	Scan(dest ...interface{}) error
}) (*models.License, error) {
	var lic models.License
	var activatedAt sql.NullInt64
	var messageID, emailStatus sql.NullString

	err := s.Scan(
		&lic.ID,
		&lic.Email,
		&lic.AdminID,
		&lic.TeamID,
		&lic.BusinessName,
		&lic.BusinessType,
		&lic.IsActivated,
		&activatedAt,
		&messageID,
		&emailStatus,
		&lic.PerformedBy,
		&lic.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if activatedAt.Valid {
		val := activatedAt.Int64
		lic.ActivatedAt = &val
	}
	if messageID.Valid {
		val := messageID.String
		lic.MessageID = &val
	}
	if emailStatus.Valid {
		val := emailStatus.String
		lic.EmailStatus = &val
	}

	return &lic, nil
}

// Touch helpers shared by the handlers.

func (r *LicenseRepository) MarkActivated(id string, businessName, businessType string) error {
	_, err := r.db.Exec(`
		UPDATE licenses SET is_activated = 1, activated_at = ?, business_name = ?, business_type = ?
		WHERE id = ?
	`, time.Now().Unix(), businessName, businessType, id)
	return err
}
