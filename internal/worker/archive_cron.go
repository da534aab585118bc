package worker

// archive_cron.go
// Background goroutine that periodically sweeps CLOSED sessions past the
// retention window into the terminal ARCHIVED state. The same sweep is
// reachable on demand through the admin archive endpoint.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const archiveTickInterval = time.Hour

// SessionArchiver is the slice of the session service the cron needs.
type SessionArchiver interface {
	ArchiveClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StartArchiveCron launches a background goroutine that ticks hourly and
// archives closed sessions older than afterDays. It respects the context
// for graceful shutdown.
func StartArchiveCron(ctx context.Context, sessions SessionArchiver, afterDays int) {
	if afterDays <= 0 {
		log.Info().Msg("archive_cron: disabled (ARCHIVE_AFTER_DAYS <= 0)")
		return
	}

	go func() {
		ticker := time.NewTicker(archiveTickInterval)
		defer ticker.Stop()

		log.Info().Int("after_days", afterDays).Msg("archive_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("archive_cron: shutting down")
				return
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -afterDays)
				if _, err := sessions.ArchiveClosedBefore(ctx, cutoff); err != nil {
					log.Error().Err(err).Msg("archive_cron: sweep failed")
				}
			}
		}
	}()
}
