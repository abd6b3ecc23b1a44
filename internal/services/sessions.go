package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"somikra/internal/config"
	"somikra/internal/models"
)

type session struct {
	store    *SaleStore
	lastSeen time.Time
}

// Sessions maps a browser session to its private SaleStore. Nothing outlives
// the session: idle entries are evicted by Run.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	config   config.SessionConfig
	seed     func() []models.SaleRecord
	logger   *slog.Logger
	now      func() time.Time
}

func NewSessions(cfg config.SessionConfig, logger *slog.Logger) *Sessions {
	s := &Sessions{
		sessions: make(map[string]*session),
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
	if cfg.SeedMockData {
		s.seed = MockSales
	}
	return s
}

// Get returns the store for id, creating a freshly seeded one if needed.
func (s *Sessions) Get(id string) *SaleStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{store: s.newStore()}
		s.sessions[id] = sess
		s.logger.Debug("session created", "sessions", len(s.sessions))
	}
	sess.lastSeen = s.now()
	return sess.store
}

// Reset throws away everything uploaded in the session.
func (s *Sessions) Reset(id string) *SaleStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &session{store: s.newStore(), lastSeen: s.now()}
	s.sessions[id] = sess
	return sess.store
}

func (s *Sessions) newStore() *SaleStore {
	store := NewSaleStore(s.logger)
	if s.seed != nil {
		store.SetData(s.seed())
	}
	return store
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops sessions idle for longer than the configured TTL and returns
// how many were removed.
func (s *Sessions) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.config.TTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run evicts idle sessions until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	interval := s.config.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				s.logger.Info("evicted idle sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}

func (s *Sessions) Stats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := 0
	for _, sess := range s.sessions {
		records += sess.store.Len()
	}
	return map[string]any{
		"sessions":     len(s.sessions),
		"record_count": records,
		"session_ttl":  s.config.TTL.String(),
	}
}
