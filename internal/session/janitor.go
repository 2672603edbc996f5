package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/meli-lister/internal/metrics"
	"github.com/donaldgifford/meli-lister/internal/store"
)

// Janitor periodically purges expired sessions from the backend.
type Janitor struct {
	cron  *cron.Cron
	store store.SessionStore
	log   *slog.Logger
}

// NewJanitor creates a Janitor that purges s every interval.
func NewJanitor(s store.SessionStore, interval time.Duration, log *slog.Logger) (*Janitor, error) {
	c := cron.New()

	j := &Janitor{
		cron:  c,
		store: s,
		log:   log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), j.runPurge); err != nil {
		return nil, err
	}

	return j, nil
}

// Start begins running the purge job.
func (j *Janitor) Start() {
	j.log.Info("session janitor started")
	j.cron.Start()
}

// Stop stops the janitor, waiting for a running purge to finish.
func (j *Janitor) Stop() context.Context {
	j.log.Info("session janitor stopping")
	return j.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (j *Janitor) Entries() []cron.Entry {
	return j.cron.Entries()
}

// Purge removes expired sessions once and returns how many were removed.
func (j *Janitor) Purge(ctx context.Context) (int64, error) {
	n, err := j.store.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SessionsPurgedTotal.Add(float64(n))
	return n, nil
}

func (j *Janitor) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.Purge(ctx)
	if err != nil {
		j.log.Error("session purge failed", "error", err)
		return
	}
	if n > 0 {
		j.log.Info("purged expired sessions", "count", n)
	}
}
