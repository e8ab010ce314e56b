package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// IdleReaper is the part of the session store the reaper drives.
type IdleReaper interface {
	Reap(now time.Time) int
	Now() time.Time
}

// SessionReaper periodically drops idle chat sessions.
type SessionReaper struct {
	interval time.Duration
	store    IdleReaper
	log      *zerolog.Logger
}

func NewSessionReaper(interval time.Duration, store IdleReaper, logger *zerolog.Logger) *SessionReaper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	reapLog := logger.With().Str("component", "SessionReaper").Logger()
	return &SessionReaper{
		interval: interval,
		store:    store,
		log:      &reapLog,
	}
}

// Run blocks until ctx is cancelled and returns ctx.Err().
func (w *SessionReaper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting session reaper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session reaper")
			return ctx.Err()
		case <-ticker.C:
			if n := w.store.Reap(w.store.Now()); n > 0 {
				w.log.Info().Int("count", n).Msg("idle sessions removed")
			}
		}
	}
}
