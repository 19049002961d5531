package repositories

import (
	"database/sql"
	"time"

	"partnerhub/internal/platform/models"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(admin *models.Admin) error {
	_, err := r.db.Exec(`
		INSERT INTO admins (id, email, first_name, last_name, password_hash, role, partner_id, team_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, admin.ID, admin.Email, admin.FirstName, admin.LastName, admin.PasswordHash, admin.Role, admin.PartnerID, admin.TeamID, admin.CreatedAt, admin.UpdatedAt)
	return err
}

func (r *AdminRepository) GetByID(id string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := r.db.QueryRow(`
		SELECT id, email, first_name, last_name, password_hash, role, partner_id, team_id, last_login_at, created_at, updated_at
		FROM admins WHERE id = ?
	`, id).Scan(&admin.ID, &admin.Email, &admin.FirstName, &admin.LastName, &admin.PasswordHash, &admin.Role, &admin.PartnerID, &admin.TeamID, &admin.LastLoginAt, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

func (r *AdminRepository) GetByEmail(email string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := r.db.QueryRow(`
		SELECT id, email, first_name, last_name, password_hash, role, partner_id, team_id, last_login_at, created_at, updated_at
		FROM admins WHERE email = ?
	`, email).Scan(&admin.ID, &admin.Email, &admin.FirstName, &admin.LastName, &admin.PasswordHash, &admin.Role, &admin.PartnerID, &admin.TeamID, &admin.LastLoginAt, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

func (r *AdminRepository) UpdateLastLogin(adminID string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE admins SET last_login_at = ? WHERE id = ?`, timestamp, adminID)
	return err
}

func (r *AdminRepository) SetTeam(adminID, teamID string) error {
	_, err := r.db.Exec(`UPDATE admins SET team_id = ?, updated_at = ? WHERE id = ?`, teamID, time.Now().Unix(), adminID)
	return err
}

// LinkByDomain attaches every unaffiliated admin whose email domain matches
// to the given partner. Used when an access request is approved.
func (r *AdminRepository) LinkByDomain(partnerID, domain string) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE admins SET partner_id = ?, updated_at = ?
		WHERE partner_id IS NULL AND email LIKE ?
	`, partnerID, time.Now().Unix(), "%@"+domain)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type PartnerRepository struct {
	db *sql.DB
}

func NewPartnerRepository(db *sql.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(partner *models.Partner) error {
	_, err := r.db.Exec(`
		INSERT INTO partners (id, slug, name, domain, status, primary_color, secondary_color, logo_url, logo_initial, program_name, full_name, support_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, partner.ID, partner.Slug, partner.Name, partner.Domain, partner.Status, partner.PrimaryColor, partner.SecondaryColor, partner.LogoURL, partner.LogoInitial, partner.ProgramName, partner.FullName, partner.SupportEmail, partner.CreatedAt, partner.UpdatedAt)
	return err
}

func (r *PartnerRepository) scanRow(row *sql.Row) (*models.Partner, error) {
	partner := &models.Partner{}
	err := row.Scan(&partner.ID, &partner.Slug, &partner.Name, &partner.Domain, &partner.Status, &partner.PrimaryColor, &partner.SecondaryColor, &partner.LogoURL, &partner.LogoInitial, &partner.ProgramName, &partner.FullName, &partner.SupportEmail, &partner.CreatedAt, &partner.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return partner, nil
}

func (r *PartnerRepository) GetByID(id string) (*models.Partner, error) {
	return r.scanRow(r.db.QueryRow(`
		SELECT id, slug, name, domain, status, primary_color, secondary_color, logo_url, logo_initial, program_name, full_name, support_email, created_at, updated_at
		FROM partners WHERE id = ?
	`, id))
}

func (r *PartnerRepository) GetByDomain(domain string) (*models.Partner, error) {
	return r.scanRow(r.db.QueryRow(`
		SELECT id, slug, name, domain, status, primary_color, secondary_color, logo_url, logo_initial, program_name, full_name, support_email, created_at, updated_at
		FROM partners WHERE domain = ?
	`, domain))
}

func (r *PartnerRepository) List(status string) ([]*models.Partner, error) {
	query := `
		SELECT id, slug, name, domain, status, primary_color, secondary_color, logo_url, logo_initial, program_name, full_name, support_email, created_at, updated_at
		FROM partners
	`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []*models.Partner
	for rows.Next() {
		partner := &models.Partner{}
		if err := rows.Scan(&partner.ID, &partner.Slug, &partner.Name, &partner.Domain, &partner.Status, &partner.PrimaryColor, &partner.SecondaryColor, &partner.LogoURL, &partner.LogoInitial, &partner.ProgramName, &partner.FullName, &partner.SupportEmail, &partner.CreatedAt, &partner.UpdatedAt); err != nil {
			return nil, err
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}

func (r *PartnerRepository) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE partners SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().Unix(), id)
	return err
}

func (r *PartnerRepository) UpdateBranding(partner *models.Partner) error {
	_, err := r.db.Exec(`
		UPDATE partners SET primary_color = ?, secondary_color = ?, logo_url = ?, logo_initial = ?, program_name = ?, full_name = ?, support_email = ?, updated_at = ?
		WHERE id = ?
	`, partner.PrimaryColor, partner.SecondaryColor, partner.LogoURL, partner.LogoInitial, partner.ProgramName, partner.FullName, partner.SupportEmail, time.Now().Unix(), partner.ID)
	return err
}

type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(team *models.Team) error {
	_, err := r.db.Exec(`
		INSERT INTO teams (id, name, domain, purchased_license_count, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, team.ID, team.Name, team.Domain, team.PurchasedLicenseCount, team.OwnerID, team.CreatedAt, team.UpdatedAt)
	return err
}

func (r *TeamRepository) GetByID(id string) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRow(`
		SELECT id, name, domain, purchased_license_count, owner_id, created_at, updated_at
		FROM teams WHERE id = ?
	`, id).Scan(&team.ID, &team.Name, &team.Domain, &team.PurchasedLicenseCount, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return team, nil
}

// UpdateSeats sets the purchased seat ceiling. Platform operators only; the
// value is a ceiling, not a live counter.
func (r *TeamRepository) UpdateSeats(id string, purchased int) error {
	_, err := r.db.Exec(`UPDATE teams SET purchased_license_count = ?, updated_at = ? WHERE id = ?`, purchased, time.Now().Unix(), id)
	return err
}

type InvitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(inv *models.TeamInvitation) error {
	_, err := r.db.Exec(`
		INSERT INTO team_invitations (id, team_id, email, role, token, status, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.TeamID, inv.Email, inv.Role, inv.Token, inv.Status, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (r *InvitationRepository) GetByToken(token string) (*models.TeamInvitation, error) {
	inv := &models.TeamInvitation{}
	err := r.db.QueryRow(`
		SELECT id, team_id, email, role, token, status, expires_at, created_at, updated_at
		FROM team_invitations WHERE token = ?
	`, token).Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepository) GetByID(id string) (*models.TeamInvitation, error) {
	inv := &models.TeamInvitation{}
	err := r.db.QueryRow(`
		SELECT id, team_id, email, role, token, status, expires_at, created_at, updated_at
		FROM team_invitations WHERE id = ?
	`, id).Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepository) ListByTeam(teamID string) ([]*models.TeamInvitation, error) {
	rows, err := r.db.Query(`
		SELECT id, team_id, email, role, token, status, expires_at, created_at, updated_at
		FROM team_invitations WHERE team_id = ? ORDER BY created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*models.TeamInvitation
	for rows.Next() {
		inv := &models.TeamInvitation{}
		if err := rows.Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *InvitationRepository) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE team_invitations SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().Unix(), id)
	return err
}

// ExpirePending marks pending invitations past their expiry. Run by the
// background worker.
func (r *InvitationRepository) ExpirePending(now int64) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE team_invitations SET status = ?, updated_at = ?
		WHERE status = ? AND expires_at < ?
	`, models.InvitationStatusExpired, now, models.InvitationStatusPending, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
