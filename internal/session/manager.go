// Package session keeps per-shopper browsing state and runs ranking passes for it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kosarica/offer-service/internal/geo"
	"github.com/kosarica/offer-service/internal/ranking"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when MaxSessions live sessions exist.
	ErrTooManySessions = errors.New("too many active sessions")
)

// Ranker runs one ranking pass.
type Ranker interface {
	Rank(ctx context.Context, shopper ranking.ShopperContext, q ranking.Query) (*ranking.Result, error)
}

// Config holds session manager configuration.
type Config struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxSessions     int           `mapstructure:"max_sessions"`
}

// Session is one shopper's browsing session.
type Session struct {
	id        string
	createdAt time.Time
	feed      *ranking.Feed

	mu       sync.Mutex
	shopper  ranking.ShopperContext
	query    ranking.Query
	lastSeen time.Time
}

// View is a point-in-time copy of a session's state.
type View struct {
	ID        string
	Shopper   ranking.ShopperContext
	Query     ranking.Query
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager owns all live sessions.
type Manager struct {
	ranker Ranker
	config Config
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a session manager and starts its expiry loop.
func NewManager(ranker Ranker, config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		ranker:   ranker,
		config:   config,
		logger:   log.With().Str("component", "session_manager").Logger(),
		now:      time.Now,
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
	}

	if config.CleanupInterval > 0 {
		m.wg.Add(1)
		go m.cleanupLoop()
	}
	return m
}

// Create starts a new session for shopper.
func (m *Manager) Create(shopper ranking.ShopperContext) (View, error) {
	if err := shopper.Validate(); err != nil {
		return View{}, err
	}
	if shopper.Unit == "" {
		shopper.Unit = ranking.UnitKilometers
	}
	shopper.Location = cloneLocation(shopper.Location)

	now := m.now()
	s := &Session{
		id:        uuid.NewString(),
		createdAt: now,
		feed:      ranking.NewFeed(),
		shopper:   shopper,
		query:     ranking.Query{SearchType: ranking.SearchProduct},
		lastSeen:  now,
	}

	m.mu.Lock()
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		m.mu.Unlock()
		return View{}, ErrTooManySessions
	}
	m.sessions[s.id] = s
	active := len(m.sessions)
	m.mu.Unlock()

	activeSessions.Set(float64(active))
	m.logger.Debug().Str("session_id", s.id).Str("unit", string(shopper.Unit)).Msg("Session created")

	return m.view(s), nil
}

// Get returns the session state and extends its lifetime.
func (m *Manager) Get(id string) (View, error) {
	s, err := m.touch(id)
	if err != nil {
		return View{}, err
	}
	return m.view(s), nil
}

// SetLocation replaces the shopper location and starts a new pass. A nil
// location clears it.
func (m *Manager) SetLocation(id string, loc *geo.Coordinate) (View, error) {
	if loc != nil {
		if err := loc.Validate(); err != nil {
			return View{}, ranking.ErrInvalidRequest{Field: "location", Reason: err.Error()}
		}
	}
	return m.mutate(id, func(s *Session) {
		s.shopper.Location = cloneLocation(loc)
	})
}

// SetConstraint replaces the travel constraint and starts a new pass.
func (m *Manager) SetConstraint(id string, c ranking.TravelConstraint) (View, error) {
	if err := c.Validate(); err != nil {
		return View{}, err
	}
	return m.mutate(id, func(s *Session) {
		s.shopper.Constraint = c
	})
}

// Refresh stores q as the session's query and starts a new pass.
func (m *Manager) Refresh(id string, q ranking.Query) (View, error) {
	return m.mutate(id, func(s *Session) {
		s.query = q
	})
}

// Results returns the latest published result of the session.
func (m *Manager) Results(id string) (ranking.Result, error) {
	s, err := m.touch(id)
	if err != nil {
		return ranking.Result{}, err
	}
	return s.feed.Current(), nil
}

// Delete ends a session and cancels its in-flight pass.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	active := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.feed.Close()
	activeSessions.Set(float64(active))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close cancels every in-flight pass and stops the expiry loop.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) mutate(id string, apply func(s *Session)) (View, error) {
	s, err := m.touch(id)
	if err != nil {
		return View{}, err
	}

	// The ticket is taken under the session lock so ticket order matches mutation order.
	s.mu.Lock()
	apply(s)
	shopper := s.shopper
	query := s.query
	ctx, ticket := s.feed.Begin(m.ctx)
	s.mu.Unlock()

	m.startPass(ctx, ticket, s, shopper, query)
	return m.view(s), nil
}

// startPass runs a pass in the background. The feed discards it if a newer
// pass starts before it finishes.
func (m *Manager) startPass(ctx context.Context, ticket ranking.Ticket, s *Session, shopper ranking.ShopperContext, q ranking.Query) {
	passesStarted.Inc()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		result, err := m.ranker.Rank(ctx, shopper, q)
		if err != nil {
			s.feed.Abandon(ticket)
			if !errors.Is(err, context.Canceled) {
				m.logger.Warn().Err(err).Str("session_id", s.id).Msg("Ranking pass failed")
			}
			return
		}
		if !s.feed.Publish(ticket, result) {
			passesDiscarded.Inc()
			m.logger.Debug().Str("session_id", s.id).Msg("Stale ranking pass discarded")
		}
	}()
}

func (m *Manager) touch(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := m.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSeen) > m.config.TTL {
		return nil, ErrNotFound
	}
	s.lastSeen = now
	return s, nil
}

func (m *Manager) view(s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	shopper := s.shopper
	shopper.Location = cloneLocation(s.shopper.Location)
	return View{
		ID:        s.id,
		Shopper:   shopper,
		Query:     s.query,
		CreatedAt: s.createdAt,
		ExpiresAt: s.lastSeen.Add(m.config.TTL),
	}
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.expire()
		}
	}
}

// expire removes sessions idle for longer than TTL.
func (m *Manager) expire() {
	now := m.now()

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen)
		s.mu.Unlock()
		if idle > m.config.TTL {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	active := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.feed.Close()
	}
	activeSessions.Set(float64(active))

	if len(expired) > 0 {
		m.logger.Debug().Int("expired", len(expired)).Msg("Idle sessions expired")
	}
}

func cloneLocation(loc *geo.Coordinate) *geo.Coordinate {
	if loc == nil {
		return nil
	}
	c := *loc
	return &c
}
