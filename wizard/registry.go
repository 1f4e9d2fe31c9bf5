package wizard

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("wizard: session not found")

// Registry holds the open wizard sessions, keyed by an opaque id. A session
// is only visible to the user who opened it.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Controller

	games    GameCreator
	partners PartnerCreator
	clock    clock.Clock
	logger   *slog.Logger
}

func NewRegistry(games GameCreator, partners PartnerCreator, clk clock.Clock, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]*Controller),
		games:    games,
		partners: partners,
		clock:    clk,
		logger:   logger,
	}
}

func (r *Registry) Open(userID int) (string, *Controller) {
	id := uuid.NewString()
	c := NewController(userID, r.games, r.partners, r.clock, r.logger.With("wizard_session", id))

	r.mu.Lock()
	r.sessions[id] = c
	r.mu.Unlock()
	return id, c
}

func (r *Registry) Get(id string, userID int) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[id]
	if !ok || c.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Close removes the session. Any call still running on it will see
// ErrStaleSession instead of applying its result.
func (r *Registry) Close(id string, userID int) error {
	r.mu.Lock()
	c, ok := r.sessions[id]
	if !ok || c.UserID() != userID {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	c.Close()
	return nil
}

// Sweep closes sessions idle for longer than maxIdle and reports how many
// were removed. Submitted sessions are removed regardless of age.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := r.clock.Now()
	var stale []*Controller

	r.mu.Lock()
	for id, c := range r.sessions {
		if c.Submitted() || now.Sub(c.LastActive()) > maxIdle {
			stale = append(stale, c)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
