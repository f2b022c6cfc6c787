package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/eventdeck/eventdeck/internal/config"
	"github.com/eventdeck/eventdeck/pkg/favorite"
	"github.com/eventdeck/eventdeck/pkg/user"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const jobTimeout = 5 * time.Minute

// Scheduler runs the maintenance jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the session purge when purger is not nil and the duplicate-marker audit.
func NewScheduler(cfg config.Jobs, purger user.SessionPurger, auditor favorite.Auditor) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.StandardLogger())
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if purger != nil {
		if _, err := c.AddFunc(cfg.SessionCleanupSpec, func() { PurgeSessions(purger) }); err != nil {
			return nil, fmt.Errorf("invalid session cleanup schedule %q: %w", cfg.SessionCleanupSpec, err)
		}
	}
	if _, err := c.AddFunc(cfg.DuplicateAuditSpec, func() { AuditDuplicates(auditor) }); err != nil {
		return nil, fmt.Errorf("invalid duplicate audit schedule %q: %w", cfg.DuplicateAuditSpec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	log.Infof("starting %d maintenance job(s)", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		log.Warn("maintenance jobs still running at shutdown")
	}
}

// PurgeSessions deletes expired sessions and returns how many were removed.
func PurgeSessions(purger user.SessionPurger) int64 {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	purged, err := purger.PurgeExpiredSessions(ctx)
	if err != nil {
		log.Errorf("session cleanup failed: %v", err)
		return 0
	}
	log.Infof("session cleanup removed %d expired session(s)", purged)
	return purged
}

// AuditDuplicates logs every (user, event) pair holding more than one favorite marker.
// Duplicates are reported, not removed.
func AuditDuplicates(auditor favorite.Auditor) []favorite.Duplicate {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	duplicates, err := auditor.FindDuplicates(ctx)
	if err != nil {
		log.Errorf("duplicate favorite audit failed: %v", err)
		return nil
	}
	for _, d := range duplicates {
		log.WithFields(log.Fields{
			"userId":  d.UserId,
			"eventId": d.EventId,
			"markers": d.Count,
		}).Warn("duplicate favorite markers")
	}
	log.Infof("duplicate favorite audit found %d pair(s)", len(duplicates))
	return duplicates
}
