package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/NicoBaldowine/pickleplay/apperr"
	"github.com/NicoBaldowine/pickleplay/models"
)

var (
	ErrInvalidTransition = errors.New("wizard: event not allowed at this step")
	ErrNoPreviousStep    = errors.New("wizard: already at the first step")
	ErrFinished          = errors.New("wizard: game already submitted")
)

// Event is one user action. The set of events is closed; see the types
// below.
type Event interface {
	event()
}

type SelectType struct {
	Type models.GameType `json:"game_type"`
}

type SelectPartner struct {
	PartnerID int    `json:"partner_id"`
	Name      string `json:"name"`
}

// StartNewPartner moves from the partner picker to the create-partner form.
type StartNewPartner struct{}

// PartnerCreated attaches a partner that was just saved from the form.
type PartnerCreated struct {
	PartnerID int    `json:"partner_id"`
	Name      string `json:"name"`
}

type SelectLevel struct {
	Level models.SkillLevel `json:"level"`
}

type SelectCourt struct {
	CourtID int `json:"court_id"`
}

type Schedule struct {
	At time.Time `json:"at"`
}

// Submitted records a successful create call.
type Submitted struct {
	GameID int `json:"game_id"`
}

type Back struct{}

func (SelectType) event()      {}
func (SelectPartner) event()   {}
func (StartNewPartner) event() {}
func (PartnerCreated) event()  {}
func (SelectLevel) event()     {}
func (SelectCourt) event()     {}
func (Schedule) event()        {}
func (Submitted) event()       {}
func (Back) event()            {}

// Transition applies ev to s and returns the new state. s is never
// modified. Payload problems come back as apperr validation errors; events
// that do not belong to the current step return ErrInvalidTransition.
func Transition(s State, ev Event) (State, error) {
	if s.step == StepSubmitted {
		return s, ErrFinished
	}

	switch e := ev.(type) {
	case Back:
		return s.retreat()

	case SelectType:
		if s.step != StepTypeSelect {
			return s, invalid(s, ev)
		}
		if !e.Type.Valid() {
			return s, apperr.Validation("game_type", "Please choose singles or doubles")
		}
		return s.apply(Draft{GameType: e.Type})

	case SelectPartner:
		if s.step != StepPartnerSelect {
			return s, invalid(s, ev)
		}
		if e.PartnerID <= 0 || e.Name == "" {
			return s, apperr.Validation("partner_id", "Please choose a partner")
		}
		s = s.clone()
		s.newPartner = false
		id := e.PartnerID
		return s.apply(Draft{PartnerID: &id, PartnerName: e.Name})

	case StartNewPartner:
		if s.step != StepPartnerSelect {
			return s, invalid(s, ev)
		}
		s = s.clone()
		s.newPartner = true
		return s.apply(Draft{})

	case PartnerCreated:
		if s.step != StepCreatePartner {
			return s, invalid(s, ev)
		}
		if e.PartnerID <= 0 || e.Name == "" {
			return s, apperr.Validation("name", "Partner name is required")
		}
		id := e.PartnerID
		return s.apply(Draft{PartnerID: &id, PartnerName: e.Name})

	case SelectLevel:
		if s.step != StepLevelSelect {
			return s, invalid(s, ev)
		}
		level, ok := models.ParseSkillLevel(string(e.Level))
		if !ok {
			return s, apperr.Validation("player_level", "Please select a skill level")
		}
		return s.apply(Draft{PlayerLevel: level})

	case SelectCourt:
		if s.step != StepCourtSelect {
			return s, invalid(s, ev)
		}
		if e.CourtID <= 0 {
			return s, apperr.Validation("court_id", "Please choose a court")
		}
		return s.apply(Draft{CourtID: e.CourtID})

	case Schedule:
		if s.step != StepSchedule {
			return s, invalid(s, ev)
		}
		if s.draft.PlayerLevel == "" {
			return s, apperr.Validation("player_level", "Please select a skill level")
		}
		if e.At.IsZero() {
			return s, apperr.Validation("scheduled_time", "Please pick a date and time")
		}
		at := e.At
		return s.apply(Draft{ScheduledTime: &at})

	case Submitted:
		if s.step != StepReview {
			return s, invalid(s, ev)
		}
		s = s.clone()
		s.history = append(s.history, s.step)
		s.step = StepSubmitted
		s.draft = Draft{}
		s.submittedID = e.GameID
		return s, nil
	}

	return s, fmt.Errorf("wizard: unknown event %T", ev)
}

// Replay folds events over a fresh state.
func Replay(events ...Event) (State, error) {
	s := NewState()
	for i, ev := range events {
		next, err := Transition(s, ev)
		if err != nil {
			return s, fmt.Errorf("event %d (%T): %w", i, ev, err)
		}
		s = next
	}
	return s, nil
}

// apply merges partial into the draft and advances to the next step.
func (s State) apply(partial Draft) (State, error) {
	s = s.clone()
	s.draft = s.draft.Merge(partial)
	return s.advance()
}

func (s State) advance() (State, error) {
	next, err := nextStep(s)
	if err != nil {
		return s, err
	}
	s = s.clone()
	s.history = append(s.history, s.step)
	s.step = next
	return s, nil
}

func (s State) retreat() (State, error) {
	if len(s.history) == 0 {
		return s, ErrNoPreviousStep
	}
	s = s.clone()
	leaving := s.step
	s.step = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	if leaving == StepCreatePartner {
		s.newPartner = false
	}
	return s, nil
}

// nextStep is the fixed order of screens. Only two decisions branch it:
// the game type, and whether a new partner is being created.
func nextStep(s State) (Step, error) {
	switch s.step {
	case StepTypeSelect:
		switch s.draft.GameType {
		case models.GameTypeDoubles:
			return StepPartnerSelect, nil
		case models.GameTypeSingles:
			return StepLevelSelect, nil
		}
		return s.step, apperr.Validation("game_type", "Please choose singles or doubles")
	case StepPartnerSelect:
		if s.newPartner {
			return StepCreatePartner, nil
		}
		if s.draft.PartnerName == "" {
			return s.step, apperr.Validation("partner_id", "Please choose a partner")
		}
		return StepLevelSelect, nil
	case StepCreatePartner:
		return StepLevelSelect, nil
	case StepLevelSelect:
		return StepCourtSelect, nil
	case StepCourtSelect:
		return StepSchedule, nil
	case StepSchedule:
		return StepReview, nil
	}
	return s.step, ErrInvalidTransition
}

func invalid(s State, ev Event) error {
	return fmt.Errorf("%w: %T at %s", ErrInvalidTransition, ev, s.step)
}
