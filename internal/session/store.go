// Package session keeps one client view-model per browser session.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	cron "github.com/robfig/cron/v3"

	"github.com/iconidentify/ytgrab/internal/viewmodel"
)

// Factory creates the view-model for a new session.
type Factory func() *viewmodel.ViewModel

type entry struct {
	vm       *viewmodel.ViewModel
	lastSeen time.Time
}

// Store is an in-memory, expiring map of session id to view-model.
// Nothing is persisted; a restart drops every session.
type Store struct {
	factory Factory
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	cron *cron.Cron
}

// NewStore creates a session store whose idle sessions expire after ttl.
func NewStore(factory Factory, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		factory:  factory,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the view-model for id, creating a session when id is empty or
// unknown. The returned id is the one the caller must use from now on.
func (s *Store) Get(id string) (string, *viewmodel.ViewModel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.sessions[id]; ok && id != "" {
		e.lastSeen = now
		return id, e.vm
	}

	id = uuid.NewString()
	e := &entry{vm: s.factory(), lastSeen: now}
	s.sessions[id] = e
	s.logger.Debug("session created", "session_id", id)
	return id, e.vm
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL, resetting their
// view-models so in-flight fetches are cancelled. It returns the count removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	cutoff := s.now().Add(-s.ttl)
	var expired []*viewmodel.ViewModel
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.vm)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, vm := range expired {
		vm.Reset()
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// StartSweeper schedules Sweep using a cron schedule such as "@every 1m".
func (s *Store) StartSweeper(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("session sweeper started", "schedule", schedule, "ttl", s.ttl)
	return nil
}

// Stop halts the sweeper and waits for a running sweep to finish.
func (s *Store) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
