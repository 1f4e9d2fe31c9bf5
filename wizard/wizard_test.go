package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NicoBaldowine/pickleplay/apperr"
	"github.com/NicoBaldowine/pickleplay/models"
)

type mockGames struct {
	mock.Mock
}

func (m *mockGames) CreateGame(ctx context.Context, game models.NewGame) (int, error) {
	args := m.Called(ctx, game)
	return args.Int(0), args.Error(1)
}

type mockPartners struct {
	mock.Mock
}

func (m *mockPartners) CreatePartner(ctx context.Context, userID int, input models.PartnerInput) (*models.Partner, error) {
	args := m.Called(ctx, userID, input)
	if p := args.Get(0); p != nil {
		return p.(*models.Partner), args.Error(1)
	}
	return nil, args.Error(1)
}

var start = time.Date(2026, 5, 15, 10, 0, 0, 0, time.UTC)

func newTestController(t *testing.T) (*Controller, *mockGames, *mockPartners, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(start)
	games := &mockGames{}
	partners := &mockPartners{}
	return NewController(7, games, partners, clk, nil), games, partners, clk
}

// countAdvances drives c to the review screen and returns how many
// forward moves it took.
func countAdvances(t *testing.T, c *Controller, before func() error) int {
	t.Helper()
	startCursor := c.State().Cursor()
	require.NoError(t, before())
	require.NoError(t, c.SelectLevel(models.SkillIntermediate))
	require.NoError(t, c.SelectCourt(3))
	require.NoError(t, c.Schedule(start.Add(48*time.Hour)))
	require.Equal(t, StepReview, c.State().Step())
	return c.State().Cursor() - startCursor
}

func TestPathLengths(t *testing.T) {
	t.Run("singles", func(t *testing.T) {
		c, _, _, _ := newTestController(t)
		n := countAdvances(t, c, func() error { return c.SelectType(models.GameTypeSingles) })
		assert.Equal(t, 4, n)
		assert.Equal(t, 5, c.State().TotalSteps())
	})

	t.Run("doubles with saved partner", func(t *testing.T) {
		c, _, _, _ := newTestController(t)
		n := countAdvances(t, c, func() error {
			if err := c.SelectType(models.GameTypeDoubles); err != nil {
				return err
			}
			return c.SelectPartner(11, "Sam Lee")
		})
		assert.Equal(t, 5, n)
		assert.False(t, c.State().IsCreatingNewPartner())
	})

	t.Run("doubles with new partner", func(t *testing.T) {
		c, _, partners, _ := newTestController(t)
		input := models.PartnerInput{Name: "Alex Kim"}
		partners.On("CreatePartner", mock.Anything, 7, input).
			Return(&models.Partner{ID: 21, UserID: 7, Name: "Alex Kim"}, nil).Once()

		n := countAdvances(t, c, func() error {
			if err := c.SelectType(models.GameTypeDoubles); err != nil {
				return err
			}
			if err := c.StartNewPartner(); err != nil {
				return err
			}
			if got := c.State().Step(); got != StepCreatePartner {
				return errors.New("expected create partner step, got " + got.String())
			}
			_, err := c.CreatePartner(context.Background(), input)
			return err
		})
		assert.Equal(t, 6, n)
		assert.True(t, c.State().IsCreatingNewPartner())
		assert.Equal(t, 7, c.State().TotalSteps())
		assert.Equal(t, "Alex Kim", c.State().Draft().PartnerName)
		partners.AssertExpectations(t)
	})
}

func TestBackKeepsDraft(t *testing.T) {
	c, _, _, _ := newTestController(t)
	require.NoError(t, c.SelectType(models.GameTypeSingles))
	require.NoError(t, c.SelectLevel(models.SkillAdvanced))

	require.NoError(t, c.Retreat())
	assert.Equal(t, StepLevelSelect, c.State().Step())
	assert.Equal(t, models.SkillAdvanced, c.State().Draft().PlayerLevel)

	require.NoError(t, c.Retreat())
	assert.Equal(t, StepTypeSelect, c.State().Step())
	assert.Equal(t, 1, c.State().Cursor())

	assert.ErrorIs(t, c.Retreat(), ErrNoPreviousStep)
}

func TestBackFromCreatePartnerClearsFlag(t *testing.T) {
	s, err := Replay(SelectType{Type: models.GameTypeDoubles}, StartNewPartner{}, Back{})
	require.NoError(t, err)
	assert.Equal(t, StepPartnerSelect, s.Step())
	assert.False(t, s.IsCreatingNewPartner())
}

func TestEventsRejectedOutOfOrder(t *testing.T) {
	_, err := Replay(SelectCourt{CourtID: 1})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Replay(SelectType{Type: models.GameTypeSingles}, SelectPartner{PartnerID: 1, Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Replay(SelectType{Type: "mixed"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestMergeIsAdditive(t *testing.T) {
	at := start.Add(time.Hour)
	d := Draft{GameType: models.GameTypeDoubles, PartnerName: "Sam", CourtID: 4}
	d = d.Merge(Draft{PlayerLevel: models.SkillBeginner, ScheduledTime: &at})
	d = d.Merge(Draft{})

	assert.Equal(t, models.GameTypeDoubles, d.GameType)
	assert.Equal(t, "Sam", d.PartnerName)
	assert.Equal(t, 4, d.CourtID)
	assert.Equal(t, models.SkillBeginner, d.PlayerLevel)
	require.NotNil(t, d.ScheduledTime)
	assert.True(t, d.ScheduledTime.Equal(at))
}

func TestRecordDropsPartnerForSingles(t *testing.T) {
	s, err := Replay(
		SelectType{Type: models.GameTypeDoubles},
		SelectPartner{PartnerID: 11, Name: "Sam Lee"},
		Back{},
		Back{},
		SelectType{Type: models.GameTypeSingles},
	)
	require.NoError(t, err)
	assert.Equal(t, "Sam Lee", s.Draft().PartnerName, "draft keeps the earlier choice")

	rec := s.Draft().Record(7)
	assert.Nil(t, rec.PartnerName)
	assert.Nil(t, rec.PartnerID)
	assert.Equal(t, models.GameTypeSingles, rec.GameType)
}

func TestScheduleRejectsPastTime(t *testing.T) {
	c, _, _, clk := newTestController(t)
	require.NoError(t, c.SelectType(models.GameTypeSingles))
	require.NoError(t, c.SelectLevel(models.SkillExpert))
	require.NoError(t, c.SelectCourt(1))

	err := c.Schedule(clk.Now().Add(-time.Minute))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, StepSchedule, c.State().Step())
}

func TestScheduleRequiresLevel(t *testing.T) {
	s := State{step: StepSchedule, history: []Step{StepTypeSelect}}
	_, err := Transition(s, Schedule{At: start})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "player_level", ae.Field)
}

func reviewController(t *testing.T) (*Controller, *mockGames) {
	t.Helper()
	c, games, _, _ := newTestController(t)
	require.NoError(t, c.SelectType(models.GameTypeSingles))
	require.NoError(t, c.SelectLevel(models.SkillIntermediate))
	require.NoError(t, c.SelectCourt(3))
	require.NoError(t, c.Schedule(start.Add(26*time.Hour)))
	return c, games
}

func TestSubmitValidationMakesNoCall(t *testing.T) {
	tests := map[string]struct {
		notes string
		phone string
		field string
	}{
		"missing phone":  {phone: "", field: "phone_number"},
		"blank phone":    {phone: "   ", field: "phone_number"},
		"short phone":    {phone: "555-1234", field: "phone_number"},
		"notes too long": {notes: strings.Repeat("a", MaxNotesLength+1), phone: "5551234567", field: "notes"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, games := reviewController(t)

			_, err := c.Submit(context.Background(), tc.notes, tc.phone)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tc.field, ae.Field)
			assert.Equal(t, StepReview, c.State().Step())
			games.AssertNotCalled(t, "CreateGame", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	c, games := reviewController(t)
	want := models.NewGame{
		CreatorID:   7,
		GameType:    models.GameTypeSingles,
		SkillLevel:  models.SkillIntermediate,
		CourtID:     3,
		ScheduledAt: start.Add(26 * time.Hour),
		PhoneNumber: "15551234567",
	}
	notes := "Bring balls"
	want.Notes = &notes
	games.On("CreateGame", mock.Anything, want).Return(99, nil).Once()

	id, err := c.Submit(context.Background(), notes, "+1 (555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, 99, id)

	s := c.State()
	assert.Equal(t, StepSubmitted, s.Step())
	assert.Equal(t, Draft{}, s.Draft())
	assert.Equal(t, 99, s.SubmittedGameID())
	assert.True(t, c.Submitted())
	assert.ErrorIs(t, c.Retreat(), ErrFinished)
	games.AssertExpectations(t)
}

func TestSubmitNotesAtLimit(t *testing.T) {
	c, games := reviewController(t)
	games.On("CreateGame", mock.Anything, mock.Anything).Return(1, nil).Once()

	_, err := c.Submit(context.Background(), strings.Repeat("é", MaxNotesLength), "5551234567")
	assert.NoError(t, err)
}

func TestSubmitFailures(t *testing.T) {
	tests := map[string]struct {
		err     error
		kind    apperr.Kind
		message string
	}{
		"session expired": {
			err:     fmt.Errorf("insert: %w", apperr.New(apperr.KindSessionExpired, "token expired")),
			kind:    apperr.KindSessionExpired,
			message: "Your session has expired. Please log in again.",
		},
		"classified failure": {
			err:     apperr.New(apperr.KindNotFound, "court is closed"),
			kind:    apperr.KindExternal,
			message: "Failed to create game: court is closed",
		},
		"internal failure": {
			err:     fmt.Errorf("failed to load court 3: %w", errors.New("pq: connection refused")),
			kind:    apperr.KindExternal,
			message: "Failed to create game",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, games := reviewController(t)
			games.On("CreateGame", mock.Anything, mock.Anything).Return(0, tc.err).Once()

			_, err := c.Submit(context.Background(), "", "5551234567")
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			assert.Equal(t, tc.message, apperr.MessageOf(err))

			s := c.State()
			assert.Equal(t, StepReview, s.Step())
			assert.Equal(t, 3, s.Draft().CourtID, "draft is kept for retry")
			assert.Equal(t, "5551234567", s.Draft().PhoneNumber)
		})
	}
}

func TestSubmitRetryAfterRejectedInputs(t *testing.T) {
	c, games := reviewController(t)

	_, err := c.Submit(context.Background(), strings.Repeat("x", MaxNotesLength+1), "5551234567")
	require.Error(t, err)
	assert.Empty(t, c.State().Draft().Notes, "rejected notes are not kept")

	_, err = c.Submit(context.Background(), "", "123")
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "phone_number", ae.Field)

	games.On("CreateGame", mock.Anything, mock.MatchedBy(func(g models.NewGame) bool {
		return g.Notes == nil && g.PhoneNumber == "5551234567"
	})).Return(12, nil).Once()

	id, err := c.Submit(context.Background(), "", "555-123-4567")
	require.NoError(t, err)
	assert.Equal(t, 12, id)
	games.AssertExpectations(t)
}

func TestSubmitClearsNotesKeptFromFailedAttempt(t *testing.T) {
	c, games := reviewController(t)
	games.On("CreateGame", mock.Anything, mock.Anything).Return(0, apperr.New(apperr.KindNotFound, "court is closed")).Once()

	_, err := c.Submit(context.Background(), "Bring balls", "5551234567")
	require.Error(t, err)
	assert.Equal(t, "Bring balls", c.State().Draft().Notes)

	games.On("CreateGame", mock.Anything, mock.MatchedBy(func(g models.NewGame) bool {
		return g.Notes == nil
	})).Return(13, nil).Once()

	id, err := c.Submit(context.Background(), "", "5551234567")
	require.NoError(t, err)
	assert.Equal(t, 13, id)
	games.AssertExpectations(t)
}

func TestCloseDuringSubmitDropsResult(t *testing.T) {
	c, games := reviewController(t)
	games.On("CreateGame", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { c.Close() }).
		Return(42, nil).Once()

	_, err := c.Submit(context.Background(), "", "5551234567")
	assert.ErrorIs(t, err, ErrStaleSession)
	assert.Equal(t, StepReview, c.State().Step())
	assert.False(t, c.Submitted())
	assert.ErrorIs(t, c.SelectCourt(1), ErrSessionClosed)
}

func TestResolveIsDeterministic(t *testing.T) {
	events := []Event{
		SelectType{Type: models.GameTypeDoubles},
		SelectPartner{PartnerID: 2, Name: "Jo"},
		SelectLevel{Level: "Advanced"},
	}
	a, err := Replay(events...)
	require.NoError(t, err)
	b, err := Replay(events...)
	require.NoError(t, err)

	assert.Equal(t, Resolve(a), Resolve(b))
	assert.Equal(t, StepCourtSelect, Resolve(a).Step)
	assert.Equal(t, 4, Resolve(a).Cursor)
	assert.Equal(t, models.SkillAdvanced, a.Draft().PlayerLevel)
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	s, err := Replay(SelectType{Type: models.GameTypeSingles})
	require.NoError(t, err)

	next, err := Transition(s, SelectLevel{Level: models.SkillBeginner})
	require.NoError(t, err)
	assert.Equal(t, StepLevelSelect, s.Step())
	assert.Equal(t, 2, s.Cursor())
	assert.Equal(t, models.SkillLevel(""), s.Draft().PlayerLevel)
	assert.Equal(t, 3, next.Cursor())
}

func TestValidPhone(t *testing.T) {
	tests := map[string]bool{
		"":                  true,
		"5551234567":        true,
		"(555) 123-4567":    true,
		"+1 555 123 4567":   true,
		"25551234567":       false,
		"555-1234":          false,
		"555 123 4567 8901": false,
	}
	for in, want := range tests {
		if got := ValidPhone(in); got != want {
			t.Errorf("ValidPhone(%q) = %v, want %v", in, got, want)
		}
	}
}
