// Package wizard drives the multi-step "create game" flow. The flow is an
// explicit state machine: every screen is a Step, every user action is an
// Event, and Transition is a pure function from one State to the next.
package wizard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/NicoBaldowine/pickleplay/models"
)

type Step uint8

const (
	StepTypeSelect Step = iota + 1
	StepPartnerSelect
	StepCreatePartner
	StepLevelSelect
	StepCourtSelect
	StepSchedule
	StepReview
	StepSubmitted
)

var stepNames = map[Step]string{
	StepTypeSelect:    "type_select",
	StepPartnerSelect: "partner_select",
	StepCreatePartner: "create_partner",
	StepLevelSelect:   "level_select",
	StepCourtSelect:   "court_select",
	StepSchedule:      "schedule",
	StepReview:        "review",
	StepSubmitted:     "submitted",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return fmt.Sprintf("step(%d)", s)
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Draft accumulates the user's choices. Zero values mean "not chosen yet".
// Merging is additive: a later merge never clears a field.
type Draft struct {
	GameType      models.GameType   `json:"game_type,omitempty"`
	PartnerID     *int              `json:"partner_id,omitempty"`
	PartnerName   string            `json:"partner_name,omitempty"`
	PlayerLevel   models.SkillLevel `json:"player_level,omitempty"`
	CourtID       int               `json:"court_id,omitempty"`
	ScheduledTime *time.Time        `json:"scheduled_time,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	PhoneNumber   string            `json:"phone_number,omitempty"`
}

// Merge returns d with every field that is set in partial copied over.
func (d Draft) Merge(partial Draft) Draft {
	if partial.GameType != "" {
		d.GameType = partial.GameType
	}
	if partial.PartnerID != nil {
		id := *partial.PartnerID
		d.PartnerID = &id
	}
	if partial.PartnerName != "" {
		d.PartnerName = partial.PartnerName
	}
	if partial.PlayerLevel != "" {
		d.PlayerLevel = partial.PlayerLevel
	}
	if partial.CourtID != 0 {
		d.CourtID = partial.CourtID
	}
	if partial.ScheduledTime != nil {
		at := *partial.ScheduledTime
		d.ScheduledTime = &at
	}
	if partial.Notes != "" {
		d.Notes = partial.Notes
	}
	if partial.PhoneNumber != "" {
		d.PhoneNumber = partial.PhoneNumber
	}
	return d
}

// Record builds the game to be created. Partner fields are only carried
// for doubles, so a draft that switched from doubles back to singles does
// not leak a stale partner.
func (d Draft) Record(creatorID int) models.NewGame {
	g := models.NewGame{
		CreatorID:   creatorID,
		GameType:    d.GameType,
		SkillLevel:  d.PlayerLevel,
		CourtID:     d.CourtID,
		PhoneNumber: NormalizePhone(d.PhoneNumber),
	}
	if d.ScheduledTime != nil {
		g.ScheduledAt = *d.ScheduledTime
	}
	if d.GameType == models.GameTypeDoubles {
		if d.PartnerName != "" {
			name := d.PartnerName
			g.PartnerName = &name
		}
		if d.PartnerID != nil {
			id := *d.PartnerID
			g.PartnerID = &id
		}
	}
	if notes := strings.TrimSpace(d.Notes); notes != "" {
		g.Notes = &notes
	}
	return g
}

// State is a snapshot of one wizard session. The zero value is not usable;
// start from NewState.
type State struct {
	step        Step
	history     []Step
	newPartner  bool
	draft       Draft
	submittedID int
}

func NewState() State {
	return State{step: StepTypeSelect}
}

func (s State) Step() Step   { return s.step }
func (s State) Draft() Draft { return s.draft }

// Cursor is the 1-based position of the current screen along the path the
// user actually took.
func (s State) Cursor() int { return len(s.history) + 1 }

// IsCreatingNewPartner reports whether the user chose to create a partner
// rather than pick a saved one on this path.
func (s State) IsCreatingNewPartner() bool { return s.newPartner }

// SubmittedGameID is the id of the created game once the state is
// StepSubmitted.
func (s State) SubmittedGameID() int { return s.submittedID }

// TotalSteps is the length of the path implied by the choices so far, or 0
// while the game type is still open.
func (s State) TotalSteps() int {
	switch s.draft.GameType {
	case models.GameTypeSingles:
		return 5
	case models.GameTypeDoubles:
		if s.newPartner {
			return 7
		}
		return 6
	}
	return 0
}

func (s State) CanGoBack() bool {
	return len(s.history) > 0 && s.step != StepSubmitted
}

func (s State) clone() State {
	s.history = slices.Clone(s.history)
	return s
}

// Screen is what a client needs to render the current step.
type Screen struct {
	Step                 Step  `json:"step"`
	Cursor               int   `json:"cursor"`
	TotalSteps           int   `json:"total_steps,omitempty"`
	CanGoBack            bool  `json:"can_go_back"`
	IsCreatingNewPartner bool  `json:"is_creating_new_partner"`
	Draft                Draft `json:"draft"`
	GameID               int   `json:"game_id,omitempty"`
}

// Resolve maps a state to the screen to show. It depends on nothing but s.
func Resolve(s State) Screen {
	return Screen{
		Step:                 s.step,
		Cursor:               s.Cursor(),
		TotalSteps:           s.TotalSteps(),
		CanGoBack:            s.CanGoBack(),
		IsCreatingNewPartner: s.newPartner,
		Draft:                s.draft,
		GameID:               s.submittedID,
	}
}
