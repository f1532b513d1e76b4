package storage

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Retention prunes execution history on a cron schedule.
type Retention struct {
	db       *DB
	schedule string
	maxAge   time.Duration
	logger   zerolog.Logger
	cron     *cron.Cron
}

// NewRetention creates a retention sweeper. schedule is a standard
// five-field cron expression; rows older than maxAge are deleted on
// each sweep.
func NewRetention(db *DB, schedule string, maxAge time.Duration, logger zerolog.Logger) *Retention {
	return &Retention{
		db:       db,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
		cron:     cron.New(cron.WithLogger(cron.PrintfLogger(cronLogger{logger}))),
	}
}

// Start registers the sweep job and starts the scheduler.
func (r *Retention) Start() error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		if _, err := r.Sweep(); err != nil {
			r.logger.Error().Err(err).Msg("retention sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.Info().Str("schedule", r.schedule).Dur("max_age", r.maxAge).Msg("retention sweeps scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (r *Retention) Stop() {
	<-r.cron.Stop().Done()
}

// Sweep deletes executions older than the retention window.
func (r *Retention) Sweep() (int64, error) {
	cutoff := time.Now().Add(-r.maxAge)
	deleted, err := r.db.DeleteExecutionsBefore(cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		r.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("pruned execution history")
	}
	return deleted, nil
}

// cronLogger adapts zerolog to the cron logger contract.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Printf(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}
