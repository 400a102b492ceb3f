package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/metrics"
)

// Purger deletes expired records and reports how many were removed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeTimeout bounds a single purge run.
const purgeTimeout = 30 * time.Second

// Run starts a background cron scheduler that calls purger.PurgeExpired on
// spec (e.g. "@every 1h") until ctx is done. An invalid spec is returned
// before anything starts. Runs never overlap.
func Run(ctx context.Context, spec string, purger Purger, logger *zerolog.Logger) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(spec, func() { purgeOnce(ctx, purger, logger) }); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}

	c.Start()
	logger.Info().Str("schedule", spec).Msg("scheduler: session purge started")

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		logger.Info().Msg("scheduler: stopped")
	}()
	return nil
}

func purgeOnce(ctx context.Context, purger Purger, logger *zerolog.Logger) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := purger.PurgeExpired(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("scheduler: purge expired sessions")
		return
	}
	metrics.AddSessionsPurged(n)
	if n > 0 {
		logger.Info().Int64("deleted", n).Msg("scheduler: purged expired sessions")
	}
}
