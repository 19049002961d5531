package workers

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"partnerhub/internal/platform/models"
	"partnerhub/internal/platform/repositories"
)

// ExpireInvitations marks pending team invitations past their expiry.
func ExpireInvitations(db *sql.DB) error {
	repo := repositories.NewInvitationRepository(db)

	expired, err := repo.ExpirePending(time.Now().Unix())
	if err != nil {
		return err
	}
	if expired > 0 {
		log.Info().Int64("count", expired).Msg("expired stale invitations")
	}
	return nil
}

// queuedEmailGracePeriod is how long a license row may sit in "queued"
// before the sweeper gives up on it. The send path normally patches the row
// within seconds; anything older missed its reconciliation.
const queuedEmailGracePeriod = time.Hour

// SweepQueuedEmails marks licenses whose activation email never left the
// queued state as failed, so the dashboard can offer a resend.
func SweepQueuedEmails(db *sql.DB) error {
	repo := repositories.NewLicenseRepository(db)

	cutoff := time.Now().Add(-queuedEmailGracePeriod).Unix()
	ids, err := repo.FindStaleQueued(cutoff)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := repo.UpdateEmailStatus(id, nil, models.EmailStatusFailed); err != nil {
			log.Warn().Err(err).Str("license_id", id).Msg("failed to mark stale queued email")
		}
	}
	if len(ids) > 0 {
		log.Info().Int("count", len(ids)).Msg("marked stale queued emails as failed")
	}
	return nil
}
