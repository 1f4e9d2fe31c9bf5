package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/NicoBaldowine/pickleplay/apperr"
	"github.com/NicoBaldowine/pickleplay/models"
)

var (
	ErrSessionClosed = errors.New("wizard: session closed")
	// ErrStaleSession is returned when a session was closed while one of
	// its external calls was in flight. The result of that call is dropped.
	ErrStaleSession = errors.New("wizard: session closed during request")
)

// GameCreator persists a finished draft and returns the new game id.
type GameCreator interface {
	CreateGame(ctx context.Context, game models.NewGame) (int, error)
}

// PartnerCreator saves a partner for userID.
type PartnerCreator interface {
	CreatePartner(ctx context.Context, userID int, input models.PartnerInput) (*models.Partner, error)
}

// Controller owns one user's wizard session. Calls are serialised; an
// external call made by Submit or CreatePartner holds the session until it
// returns, but Close never waits for it.
type Controller struct {
	mu     sync.Mutex
	userID int
	state  State

	// Read without the lock so that sweeping never waits on a session
	// that is blocked in an external call.
	lastActive atomic.Int64
	submitted  atomic.Bool
	generation atomic.Uint64
	closed     atomic.Bool

	games    GameCreator
	partners PartnerCreator
	clock    clock.Clock
	logger   *slog.Logger
}

func NewController(userID int, games GameCreator, partners PartnerCreator, clk clock.Clock, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		userID:   userID,
		state:    NewState(),
		games:    games,
		partners: partners,
		clock:    clk,
		logger:   logger,
	}
	c.touch()
	return c
}

func (c *Controller) UserID() int { return c.userID }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) Screen() Screen {
	return Resolve(c.State())
}

// LastActive is when the session last changed.
func (c *Controller) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

// Submitted reports whether the game was created.
func (c *Controller) Submitted() bool { return c.submitted.Load() }

func (c *Controller) touch() {
	c.lastActive.Store(c.clock.Now().UnixNano())
}

// Close ends the session. Results of calls still in flight are discarded.
func (c *Controller) Close() {
	c.closed.Store(true)
	c.generation.Add(1)
}

// step runs a pure transition under the session lock.
func (c *Controller) step(fn func(State) (State, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrSessionClosed
	}
	next, err := fn(c.state)
	if err != nil {
		return err
	}
	c.state = next
	c.touch()
	return nil
}

// Apply feeds one event through Transition.
func (c *Controller) Apply(ev Event) error {
	return c.step(func(s State) (State, error) { return Transition(s, ev) })
}

// ApplyStepResult merges partial into the draft and moves to the next
// screen on the current path.
func (c *Controller) ApplyStepResult(partial Draft) error {
	return c.step(func(s State) (State, error) { return s.apply(partial) })
}

func (c *Controller) Advance() error {
	return c.step(func(s State) (State, error) { return s.advance() })
}

func (c *Controller) Retreat() error {
	return c.Apply(Back{})
}

func (c *Controller) SelectType(t models.GameType) error {
	return c.Apply(SelectType{Type: t})
}

func (c *Controller) SelectPartner(id int, name string) error {
	return c.Apply(SelectPartner{PartnerID: id, Name: name})
}

func (c *Controller) StartNewPartner() error {
	return c.Apply(StartNewPartner{})
}

func (c *Controller) SelectLevel(level models.SkillLevel) error {
	return c.Apply(SelectLevel{Level: level})
}

func (c *Controller) SelectCourt(courtID int) error {
	return c.Apply(SelectCourt{CourtID: courtID})
}

// Schedule sets the game time. Times before now are rejected.
func (c *Controller) Schedule(at time.Time) error {
	if at.Before(c.clock.Now()) {
		return apperr.Validation("scheduled_time", "Please pick a time in the future")
	}
	return c.Apply(Schedule{At: at})
}

// CreatePartner saves a new partner and attaches it to the draft.
func (c *Controller) CreatePartner(ctx context.Context, input models.PartnerInput) (*models.Partner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return nil, ErrSessionClosed
	}
	if c.state.step != StepCreatePartner {
		return nil, invalid(c.state, PartnerCreated{})
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, apperr.Validation("name", "Partner name is required")
	}
	if input.PhoneNumber != nil && !ValidPhone(*input.PhoneNumber) {
		return nil, apperr.Validation("phone_number", "Please enter a valid 10-digit phone number")
	}

	gen := c.generation.Load()
	partner, err := c.partners.CreatePartner(ctx, c.userID, input)
	if c.generation.Load() != gen {
		return nil, ErrStaleSession
	}
	if err != nil {
		return nil, c.classify("Failed to save partner", err)
	}

	next, err := Transition(c.state, PartnerCreated{PartnerID: partner.ID, Name: partner.Name})
	if err != nil {
		return nil, err
	}
	c.state = next
	c.touch()
	return partner, nil
}

// Submit validates the review inputs and creates the game. A rejected
// input leaves the session untouched. When the game cannot be created the
// inputs are kept in the draft so the user can retry; on success the draft
// is discarded.
func (c *Controller) Submit(ctx context.Context, notes, phone string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return 0, ErrSessionClosed
	}
	if c.state.step != StepReview {
		return 0, invalid(c.state, Submitted{})
	}

	// Notes and phone are the review screen's current values, so they
	// replace the draft's rather than merge into it.
	draft := c.state.draft
	draft.Notes = notes
	draft.PhoneNumber = phone
	if err := ValidateSubmission(draft); err != nil {
		return 0, err
	}

	c.state = c.state.clone()
	c.state.draft = draft
	c.touch()

	record := draft.Record(c.userID)
	gen := c.generation.Load()
	id, err := c.games.CreateGame(ctx, record)
	if c.generation.Load() != gen {
		c.logger.Info("dropping result for closed wizard session", "user_id", c.userID, "game_id", id)
		return 0, ErrStaleSession
	}
	if err != nil {
		c.logger.Warn("create game failed", "user_id", c.userID, "error", err)
		return 0, c.classify("Failed to create game", err)
	}

	next, err := Transition(c.state, Submitted{GameID: id})
	if err != nil {
		return 0, err
	}
	c.state = next
	c.submitted.Store(true)
	c.logger.Info("game created from wizard", "user_id", c.userID, "game_id", id)
	return id, nil
}

// classify keeps session expiry distinguishable so callers can send the
// user back to sign in. Classified failures surface the collaborator's
// message; internal causes get only the action, and their detail is logged.
func (c *Controller) classify(action string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindSessionExpired:
		return apperr.Wrap(apperr.KindSessionExpired, "Your session has expired. Please log in again.", err)
	case apperr.KindValidation:
		return err
	case apperr.KindInternal:
		c.logger.Error(strings.ToLower(action), "user_id", c.userID, "error", err)
		return apperr.Wrap(apperr.KindExternal, action, err)
	}
	return apperr.Wrap(apperr.KindExternal, action+": "+apperr.MessageOf(err), err)
}

// Dispatch decodes a named action from a client and applies it.
func (c *Controller) Dispatch(ctx context.Context, action string, payload json.RawMessage) error {
	decode := func(v any) error {
		if len(payload) == 0 {
			return nil
		}
		if err := json.Unmarshal(payload, v); err != nil {
			return apperr.Validation("payload", fmt.Sprintf("Invalid %s payload", action))
		}
		return nil
	}

	switch action {
	case "select_type":
		var e SelectType
		if err := decode(&e); err != nil {
			return err
		}
		return c.Apply(e)
	case "select_partner":
		var e SelectPartner
		if err := decode(&e); err != nil {
			return err
		}
		return c.Apply(e)
	case "start_new_partner":
		return c.StartNewPartner()
	case "create_partner":
		var in models.PartnerInput
		if err := decode(&in); err != nil {
			return err
		}
		_, err := c.CreatePartner(ctx, in)
		return err
	case "select_level":
		var e SelectLevel
		if err := decode(&e); err != nil {
			return err
		}
		return c.Apply(e)
	case "select_court":
		var e SelectCourt
		if err := decode(&e); err != nil {
			return err
		}
		return c.Apply(e)
	case "schedule":
		var e Schedule
		if err := decode(&e); err != nil {
			return err
		}
		return c.Schedule(e.At)
	case "submit":
		var in struct {
			Notes       string `json:"notes"`
			PhoneNumber string `json:"phone_number"`
		}
		if err := decode(&in); err != nil {
			return err
		}
		_, err := c.Submit(ctx, in.Notes, in.PhoneNumber)
		return err
	case "back":
		return c.Retreat()
	}
	return apperr.Validation("action", fmt.Sprintf("Unknown action %q", action))
}
