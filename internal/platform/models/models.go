package models

// Global admin roles.
const (
	RoleMoilAdmin    = "moil_admin"
	RolePartnerAdmin = "partner_admin"
	RoleMember       = "member"
)

// Partner lifecycle states.
const (
	PartnerStatusPending   = "pending"
	PartnerStatusActive    = "active"
	PartnerStatusSuspended = "suspended"
)

// Email delivery states recorded on a license row.
const (
	EmailStatusQueued     = "queued"
	EmailStatusSent       = "sent"
	EmailStatusFailed     = "failed"
	EmailStatusDelivered  = "delivered"
	EmailStatusOpened     = "opened"
	EmailStatusBounced    = "bounced"
	EmailStatusComplained = "complained"
)

// License is one seat allocated to an end-user email. Emails are globally
// unique across all partners; the uniqueness is enforced by a pre-check in
// the allocation workflow, not by the schema.
type License struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	AdminID      string  `json:"admin_id"`
	TeamID       *string `json:"team_id,omitempty"`
	BusinessName string  `json:"business_name,omitempty"`
	BusinessType string  `json:"business_type,omitempty"`
	IsActivated  bool    `json:"is_activated"`
	ActivatedAt  *int64  `json:"activated_at,omitempty"`
	MessageID    *string `json:"message_id,omitempty"`
	EmailStatus  *string `json:"email_status,omitempty"`
	PerformedBy  string  `json:"performed_by"`
	CreatedAt    int64   `json:"created_at"`
}

// Team owns a purchased seat quota. "Available" is always derived as
// purchased minus a fresh count of assigned license rows, never stored.
type Team struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Domain                string `json:"domain"`
	PurchasedLicenseCount int    `json:"purchased_license_count"`
	OwnerID               string `json:"owner_id"`
	CreatedAt             int64  `json:"created_at"`
	UpdatedAt             int64  `json:"updated_at"`
}

// Partner is the tenant and branding scope.
type Partner struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	Domain         string `json:"domain"`
	Status         string `json:"status"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`
	LogoInitial    string `json:"logo_initial,omitempty"`
	ProgramName    string `json:"program_name,omitempty"`
	FullName       string `json:"full_name,omitempty"`
	SupportEmail   string `json:"support_email,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

// Admin is a human user account. PartnerID is nil for a partner_admin whose
// access request has not been approved yet ("pending").
type Admin struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	PasswordHash string  `json:"-"`
	Role         string  `json:"role"`
	PartnerID    *string `json:"partner_id,omitempty"`
	TeamID       *string `json:"team_id,omitempty"`
	LastLoginAt  *int64  `json:"last_login_at,omitempty"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`

	Partner *Partner `json:"partner,omitempty"`
}

// TeamInvitation is a pending email invite to join a team. Acceptance
// requires a case-insensitive match on the invited email, and an admin may
// belong to at most one team.
type TeamInvitation struct {
	ID        string `json:"id"`
	TeamID    string `json:"team_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Token     string `json:"-"`
	Status    string `json:"status"`
	ExpiresAt int64  `json:"expires_at"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Invitation lifecycle states.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRevoked  = "revoked"
	InvitationStatusExpired  = "expired"
)
