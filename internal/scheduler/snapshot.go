// Package scheduler runs the periodic snapshot job: the entity store's
// state is persisted into the local slot on a cron schedule so a restart
// picks up close to where the user left off.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/shelfmark/shelfmark/internal/snapshot"
	"github.com/shelfmark/shelfmark/internal/store"
)

// SnapshotScheduler manages the periodic snapshot persistence job.
type SnapshotScheduler struct {
	store    *store.Store
	snaps    *snapshot.Manager
	schedule string
	log      *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewSnapshotScheduler creates a scheduler that saves the store state on
// the given cron schedule (standard five-field format).
func NewSnapshotScheduler(st *store.Store, snaps *snapshot.Manager, schedule string, log *zap.Logger) *SnapshotScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SnapshotScheduler{
		store:    st,
		snaps:    snaps,
		schedule: schedule,
		log:      log,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the periodic job. Calling Start twice is a no-op.
func (s *SnapshotScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runOnce)
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.schedule, err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true
	s.log.Info("snapshot scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the periodic job and waits for a running save to finish.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.log.Info("snapshot scheduler stopped")
}

func (s *SnapshotScheduler) runOnce() {
	if err := s.snaps.Save(s.store.State()); err != nil {
		s.log.Warn("periodic snapshot save failed", zap.Error(err))
	}
}
