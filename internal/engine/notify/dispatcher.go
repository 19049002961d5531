package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"partnerhub/internal/engine/licenses"
	"partnerhub/internal/platform/config"
	"partnerhub/internal/platform/models"
)

// Branding is the resolved look of an outbound email: the partner's
// customization where present, platform defaults everywhere else.
type Branding struct {
	ProgramName  string
	LogoURL      string
	LogoInitial  string
	PrimaryColor string
	SupportEmail string
}

// Dispatcher builds branded activation and invitation emails and hands them
// to the outbound sender, one send per recipient.
type Dispatcher struct {
	sender     Sender
	appBaseURL string
	defaults   config.BrandingConfig
}

func NewDispatcher(sender Sender, appCfg config.AppConfig, defaults config.BrandingConfig) *Dispatcher {
	return &Dispatcher{
		sender:     sender,
		appBaseURL: appCfg.BaseURL,
		defaults:   defaults,
	}
}

func (d *Dispatcher) branding(partner *models.Partner) Branding {
	b := Branding{
		ProgramName:  d.defaults.ProgramName,
		LogoURL:      d.defaults.LogoURL,
		PrimaryColor: d.defaults.PrimaryColor,
		SupportEmail: d.defaults.SupportEmail,
	}
	if partner == nil {
		return b
	}
	if partner.ProgramName != "" {
		b.ProgramName = partner.ProgramName
	}
	if partner.LogoURL != "" {
		b.LogoURL = partner.LogoURL
	}
	if partner.LogoInitial != "" {
		b.LogoInitial = partner.LogoInitial
	}
	if partner.PrimaryColor != "" {
		b.PrimaryColor = partner.PrimaryColor
	}
	if partner.SupportEmail != "" {
		b.SupportEmail = partner.SupportEmail
	}
	return b
}

// ActivationURL embeds the license id and the partner slug so the activation
// page can render the right branding before the user signs in.
func (d *Dispatcher) ActivationURL(partner *models.Partner, lic *models.License) string {
	activationURL := fmt.Sprintf("%s/activate/%s", d.appBaseURL, lic.ID)
	if partner != nil && partner.Slug != "" {
		activationURL += "?p=" + url.QueryEscape(partner.Slug)
	}
	return activationURL
}

func (d *Dispatcher) InviteURL(token string) string {
	return fmt.Sprintf("%s/invitations/accept?token=%s", d.appBaseURL, url.QueryEscape(token))
}

// SendActivation delivers one activation email and returns the provider
// message id. Shared by the batch path and the resend endpoint.
func (d *Dispatcher) SendActivation(ctx context.Context, partner *models.Partner, lic *models.License) (string, error) {
	b := d.branding(partner)

	var body bytes.Buffer
	err := activationTemplate.Execute(&body, struct {
		Branding
		ActivationURL string
	}{
		Branding:      b,
		ActivationURL: d.ActivationURL(partner, lic),
	})
	if err != nil {
		return "", err
	}

	subject := fmt.Sprintf("Activate your %s license", b.ProgramName)
	return d.sender.Send(ctx, lic.Email, subject, body.String())
}

// SendActivationBatch sends one activation email per row and reports the
// outcome keyed by license id. Individual failures are logged and recorded,
// never escalated.
func (d *Dispatcher) SendActivationBatch(ctx context.Context, partner *models.Partner, rows []*models.License) map[string]licenses.SendOutcome {
	outcomes := make(map[string]licenses.SendOutcome, len(rows))
	for _, lic := range rows {
		messageID, err := d.SendActivation(ctx, partner, lic)
		if err != nil {
			log.Warn().Err(err).Str("license_id", lic.ID).Str("email", lic.Email).Msg("activation email failed")
		}
		outcomes[lic.ID] = licenses.SendOutcome{MessageID: messageID, Err: err}
	}
	return outcomes
}

// SendInvitation delivers a team invitation email.
func (d *Dispatcher) SendInvitation(ctx context.Context, partner *models.Partner, inv *models.TeamInvitation, teamName string) (string, error) {
	b := d.branding(partner)

	var body bytes.Buffer
	err := invitationTemplate.Execute(&body, struct {
		Branding
		TeamName  string
		InviteURL string
		ExpiresAt string
	}{
		Branding:  b,
		TeamName:  teamName,
		InviteURL: d.InviteURL(inv.Token),
		ExpiresAt: time.Unix(inv.ExpiresAt, 0).UTC().Format("Jan 2, 2006"),
	})
	if err != nil {
		return "", err
	}

	subject := fmt.Sprintf("Invitation to join %s on %s", teamName, b.ProgramName)
	return d.sender.Send(ctx, inv.Email, subject, body.String())
}
