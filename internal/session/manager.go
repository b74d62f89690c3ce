// Package session keeps one wizard per tool-page visit and expires idle visits.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pdftools/backend/internal/clock"
	"github.com/pdftools/backend/internal/observability"
	"github.com/pdftools/backend/internal/registry"
	"github.com/pdftools/backend/internal/wizard"
)

// MaxSessions limits concurrent visits to bound memory use.
const MaxSessions = 200

// SessionMaxAge is how long an idle visit is kept before cleanup.
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow protects visits that were used recently from eviction.
const SessionKeepAliveWindow = 5 * time.Minute

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Options configures a Manager.
type Options struct {
	MaxSessions int
	KeepAlive   time.Duration
	Wizard      wizard.Options
	Clock       clock.Clock
	Logger      observability.Logger
}

// Manager owns the live wizard sessions.
type Manager struct {
	sessions map[string]*State
	mu       sync.RWMutex
	registry *registry.Registry
	opts     Options
	logger   observability.Logger
}

// State is one visit: its wizard and bookkeeping timestamps.
type State struct {
	Wizard       *wizard.Wizard
	CreatedAt    time.Time
	LastAccessed time.Time
}

// NewManager creates a session manager backed by reg.
func NewManager(reg *registry.Registry, opts Options) *Manager {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = MaxSessions
	}
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = SessionKeepAliveWindow
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = observability.Discard()
	}
	if opts.Wizard.Clock == nil {
		opts.Wizard.Clock = opts.Clock
	}
	if opts.Wizard.Logger == nil {
		opts.Wizard.Logger = opts.Logger
	}
	return &Manager{
		sessions: make(map[string]*State),
		registry: reg,
		opts:     opts,
		logger:   opts.Logger.WithComponent("session"),
	}
}

// Start opens a visit for a tool. The wizard starts at the upload step.
func (m *Manager) Start(toolID string) (*wizard.Wizard, error) {
	tool, err := m.registry.Lookup(toolID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	w := wizard.New(id, tool, m.opts.Wizard)
	now := m.opts.Clock.Now()

	m.mu.Lock()
	evicted := m.evictLocked(now)
	m.sessions[id] = &State{Wizard: w, CreatedAt: now, LastAccessed: now}
	total := len(m.sessions)
	m.mu.Unlock()

	for _, old := range evicted {
		old.Close()
		m.logger.Info("evicted session to free capacity", "session", shortID(old.ID()))
	}
	m.logger.Debug("session started", "session", shortID(id), "tool", tool.ID, "active", total)
	return w, nil
}

// Get returns the wizard of a live visit.
func (m *Manager) Get(id string) (*wizard.Wizard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return state.Wizard, nil
}

// Touch marks a visit as used so cleanup keeps it. It reports false for
// unknown ids.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = m.opts.Clock.Now()
	return true
}

// End closes a visit, cancelling any running simulation.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	state.Wizard.Close()
	m.logger.Debug("session ended", "session", shortID(id))
	return nil
}

// CleanupOldSessions removes visits not accessed within maxAge,
// but keeps visits accessed within the keep-alive window. It returns how
// many were removed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	now := m.opts.Clock.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-m.opts.KeepAlive)

	var expired []*State
	m.mu.Lock()
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			expired = append(expired, state)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, state := range expired {
		state.Wizard.Close()
		m.logger.Info("cleaned up aged session",
			"session", shortID(state.Wizard.ID()),
			"idle", now.Sub(state.LastAccessed).Round(time.Second).String())
	}
	return len(expired)
}

// Len returns the number of live visits.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every visit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	states := m.sessions
	m.sessions = make(map[string]*State)
	m.mu.Unlock()

	for _, state := range states {
		state.Wizard.Close()
	}
	if len(states) > 0 {
		m.logger.Info("closed sessions on shutdown", "count", len(states))
	}
}

// evictLocked frees one slot when the manager is full. Visits idle past the
// keep-alive window go first, oldest access first; if every visit is
// active the least recently used one is evicted.
func (m *Manager) evictLocked(now time.Time) []*wizard.Wizard {
	if len(m.sessions) < m.opts.MaxSessions {
		return nil
	}

	states := make([]*State, 0, len(m.sessions))
	for _, state := range m.sessions {
		states = append(states, state)
	}
	keepAliveCutoff := now.Add(-m.opts.KeepAlive)
	sort.Slice(states, func(i, j int) bool {
		idleI := !states[i].LastAccessed.After(keepAliveCutoff)
		idleJ := !states[j].LastAccessed.After(keepAliveCutoff)
		if idleI != idleJ {
			return idleI
		}
		return states[i].LastAccessed.Before(states[j].LastAccessed)
	})

	toFree := len(m.sessions) - m.opts.MaxSessions + 1
	evicted := make([]*wizard.Wizard, 0, toFree)
	for _, state := range states[:toFree] {
		delete(m.sessions, state.Wizard.ID())
		evicted = append(evicted, state.Wizard)
	}
	return evicted
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
