package notify

import "html/template"

var activationTemplate = template.Must(template.New("activation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 600px; margin: 0 auto;">
  <div style="padding: 24px 0; text-align: center;">
    {{if .LogoURL}}<img src="{{.LogoURL}}" alt="{{.ProgramName}}" style="max-height: 48px;"/>
    {{else}}<div style="display: inline-block; width: 48px; height: 48px; border-radius: 50%; background: {{.PrimaryColor}}; color: #fff; line-height: 48px; font-size: 24px;">{{.LogoInitial}}</div>{{end}}
  </div>
  <h2 style="color: {{.PrimaryColor}};">Your {{.ProgramName}} license is ready</h2>
  <p>You have been granted a license to {{.ProgramName}}. Activate it to get started:</p>
  <p style="text-align: center; padding: 16px 0;">
    <a href="{{.ActivationURL}}" style="background: {{.PrimaryColor}}; color: #fff; padding: 12px 32px; border-radius: 6px; text-decoration: none;">Activate your license</a>
  </p>
  <p style="color: #6b7280; font-size: 13px;">If the button does not work, copy this link into your browser:<br/>{{.ActivationURL}}</p>
  <p style="color: #6b7280; font-size: 13px;">Questions? Contact <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
</body>
</html>`))

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 600px; margin: 0 auto;">
  <h2 style="color: {{.PrimaryColor}};">You have been invited to join {{.TeamName}}</h2>
  <p>Join the {{.TeamName}} team on {{.ProgramName}} to manage licenses together.</p>
  <p style="text-align: center; padding: 16px 0;">
    <a href="{{.InviteURL}}" style="background: {{.PrimaryColor}}; color: #fff; padding: 12px 32px; border-radius: 6px; text-decoration: none;">Accept invitation</a>
  </p>
  <p style="color: #6b7280; font-size: 13px;">This invitation expires on {{.ExpiresAt}}. Questions? Contact <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>
</body>
</html>`))
