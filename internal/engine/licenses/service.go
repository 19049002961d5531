package licenses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

// Caller is the resolved identity performing an allocation: the admin row,
// their partner (nil for an unaffiliated platform operator) and their team
// (nil in solo mode, which disables quota checks).
type Caller struct {
	Admin   *models.Admin
	Partner *models.Partner
	Team    *models.Team
}

func (c *Caller) scope() repositories.Scope {
	scope := repositories.Scope{AdminID: c.Admin.ID}
	if c.Team != nil {
		scope.TeamID = &c.Team.ID
	}
	return scope
}

// SendOutcome is the per-row result of an activation email attempt.
type SendOutcome struct {
	MessageID string
	Err       error
}

// Notifier delivers activation emails for freshly inserted rows and reports
// the outcome keyed by license id. A missing key counts as a failure.
type Notifier interface {
	SendActivationBatch(ctx context.Context, partner *models.Partner, rows []*models.License) map[string]SendOutcome
}

// StatusChecker asks the external system which emails are already activated
// there. Best-effort: errors degrade to "nobody is activated".
type StatusChecker interface {
	Enabled() bool
	Statuses(ctx context.Context, emails []string) (map[string]bool, error)
}

// Auditor appends a best-effort activity record.
type Auditor interface {
	Log(ctx context.Context, teamID, adminID, action, resourceType, resourceID string, metadata map[string]interface{})
}

// BatchResult is the aggregation contract shared by the single-add, bulk-add
// and import entry points.
type BatchResult struct {
	Success      int               `json:"success"`
	Failed       int               `json:"failed"`
	EmailsSent   int               `json:"emails_sent"`
	EmailsFailed int               `json:"emails_failed"`
	Errors       []string          `json:"errors"`
	Licenses     []*models.License `json:"licenses"`
}

type Service struct {
	repo     *repositories.LicenseRepository
	quota    *QuotaResolver
	notifier Notifier
	checker  StatusChecker
	auditor  Auditor
}

func NewService(repo *repositories.LicenseRepository, notifier Notifier, checker StatusChecker, auditor Auditor) *Service {
	return &Service{
		repo:     repo,
		quota:    NewQuotaResolver(repo),
		notifier: notifier,
		checker:  checker,
		auditor:  auditor,
	}
}

// AllocateBatch runs the full allocation workflow for a normalized batch.
// Check order is fixed: quota, then global uniqueness (hard reject), then
// scope existence (soft filter), then external prefetch (enrichment), then
// the insert, notifications and the audit record. Earlier failures
// short-circuit everything after them.
//
// Hard rejections (quota, global duplicate, store failure) come back as an
// error and nothing is written. Soft failures (invalid entries, in-scope
// duplicates, email delivery) are reported inside the result.
func (s *Service) AllocateBatch(ctx context.Context, caller *Caller, batch Batch) (*BatchResult, error) {
	result := &BatchResult{
		Errors:   []string{},
		Licenses: []*models.License{},
	}

	for _, raw := range batch.Invalid {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("%s: invalid email address", raw))
	}

	candidates, repeats := Dedupe(batch.Candidates)
	for _, email := range repeats {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("%s: duplicate entry in batch", email))
	}

	if len(candidates) == 0 {
		return result, nil
	}

	if err := s.quota.Check(caller.Team, len(candidates)); err != nil {
		return nil, err
	}

	scope := caller.scope()
	if err := CheckGlobal(s.repo, scope, candidates); err != nil {
		return nil, err
	}

	clean, existing, err := FilterScope(s.repo, scope, candidates)
	if err != nil {
		return nil, err
	}
	for _, email := range existing {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("%s: already exists in this scope", email))
	}

	if len(clean) == 0 {
		return result, nil
	}

	activated := s.prefetchActivation(ctx, clean)

	rows := s.buildRows(caller, clean, activated)
	if err := s.repo.InsertBatch(rows); err != nil {
		return nil, &AllocationError{Err: err}
	}
	result.Success = len(rows)
	result.Licenses = rows

	s.dispatch(ctx, caller, rows, result)

	if caller.Team != nil && s.auditor != nil {
		s.auditor.Log(ctx, caller.Team.ID, caller.Admin.ID, "licenses.batch_allocated", "license", "", map[string]interface{}{
			"requested":   len(batch.Candidates) + len(batch.Invalid),
			"inserted":    result.Success,
			"emails_sent": result.EmailsSent,
		})
	}

	return result, nil
}

// prefetchActivation asks the external system which candidates are already
// activated there. Never a blocker: on any error everyone is treated as
// needing an activation email.
func (s *Service) prefetchActivation(ctx context.Context, emails []string) map[string]bool {
	if s.checker == nil || !s.checker.Enabled() {
		return nil
	}

	statuses, err := s.checker.Statuses(ctx, emails)
	if err != nil {
		log.Warn().Err(err).Int("candidates", len(emails)).Msg("activation prefetch failed, continuing without it")
		return nil
	}
	return statuses
}

func (s *Service) buildRows(caller *Caller, emails []string, activated map[string]bool) []*models.License {
	now := time.Now().Unix()
	rows := make([]*models.License, 0, len(emails))
	for _, email := range emails {
		lic := &models.License{
			ID:          "lic_" + uuid.NewString(),
			Email:       email,
			AdminID:     caller.Admin.ID,
			IsActivated: activated[email],
			PerformedBy: caller.Admin.ID,
			CreatedAt:   now,
		}
		if caller.Team != nil {
			teamID := caller.Team.ID
			lic.TeamID = &teamID
		}
		if !lic.IsActivated {
			status := models.EmailStatusQueued
			lic.EmailStatus = &status
		}
		rows = append(rows, lic)
	}
	return rows
}

// dispatch sends activation emails for rows not already activated and
// reconciles the delivery outcome onto each row. Rows with no reported
// outcome are marked failed rather than left in limbo.
func (s *Service) dispatch(ctx context.Context, caller *Caller, rows []*models.License, result *BatchResult) {
	var needs []*models.License
	for _, lic := range rows {
		if !lic.IsActivated {
			needs = append(needs, lic)
		}
	}
	if len(needs) == 0 {
		return
	}

	var outcomes map[string]SendOutcome
	if s.notifier != nil {
		outcomes = s.notifier.SendActivationBatch(ctx, caller.Partner, needs)
	}

	for _, lic := range needs {
		outcome, ok := outcomes[lic.ID]
		if !ok || outcome.Err != nil {
			result.EmailsFailed++
			status := models.EmailStatusFailed
			lic.MessageID = nil
			lic.EmailStatus = &status
			if err := s.repo.UpdateEmailStatus(lic.ID, nil, models.EmailStatusFailed); err != nil {
				log.Warn().Err(err).Str("license_id", lic.ID).Msg("failed to record email failure")
			}
			continue
		}

		result.EmailsSent++
		messageID := outcome.MessageID
		status := models.EmailStatusSent
		lic.MessageID = &messageID
		lic.EmailStatus = &status
		if err := s.repo.UpdateEmailStatus(lic.ID, &messageID, models.EmailStatusSent); err != nil {
			log.Warn().Err(err).Str("license_id", lic.ID).Msg("failed to record email success")
		}
	}
}
