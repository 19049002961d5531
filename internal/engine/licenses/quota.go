package licenses

import (
	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

// QuotaResolver derives a team's remaining seats. "Available" is never
// stored: it is purchased_license_count minus a fresh count of assigned
// rows, taken at decision time.
type QuotaResolver struct {
	repo *repositories.LicenseRepository
}

func NewQuotaResolver(repo *repositories.LicenseRepository) *QuotaResolver {
	return &QuotaResolver{repo: repo}
}

// Available returns the team's remaining seat count, which may be negative
// if the ceiling was lowered after seats were assigned.
func (q *QuotaResolver) Available(team *models.Team) (int, error) {
	assigned, err := q.repo.CountByTeam(team.ID)
	if err != nil {
		return 0, err
	}
	return team.PurchasedLicenseCount - assigned, nil
}

// Check fails fast when a proposed batch does not fit. A nil team means solo
// mode: no quota applies and every batch passes.
func (q *QuotaResolver) Check(team *models.Team, batchSize int) error {
	if team == nil {
		return nil
	}

	available, err := q.Available(team)
	if err != nil {
		return err
	}
	if available <= 0 || batchSize > available {
		return &QuotaExceededError{Available: available, Requested: batchSize}
	}
	return nil
}
