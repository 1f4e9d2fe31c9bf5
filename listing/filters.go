// Package listing filters and orders the game and court listings shown on
// the search screens.
//
// Everything here is a pure function of its inputs: the caller passes the
// current time and the viewer's location fix explicitly.
package listing

import (
	"slices"
	"strings"
	"time"

	"github.com/NicoBaldowine/pickleplay/models"
)

type GameTypeFacet struct {
	Singles bool `json:"singles"`
	Doubles bool `json:"doubles"`
	All     bool `json:"all"`
}

type SkillLevelFacet struct {
	Beginner     bool `json:"beginner"`
	Intermediate bool `json:"intermediate"`
	Advanced     bool `json:"advanced"`
	Expert       bool `json:"expert"`
	All          bool `json:"all"`
}

// Selected returns the individually ticked levels.
func (f SkillLevelFacet) Selected() []models.SkillLevel {
	var levels []models.SkillLevel
	if f.Beginner {
		levels = append(levels, models.SkillBeginner)
	}
	if f.Intermediate {
		levels = append(levels, models.SkillIntermediate)
	}
	if f.Advanced {
		levels = append(levels, models.SkillAdvanced)
	}
	if f.Expert {
		levels = append(levels, models.SkillExpert)
	}
	return levels
}

type TimeWindowFacet struct {
	Soon     bool `json:"soon"`
	Today    bool `json:"today"`
	ThisWeek bool `json:"this_week"`
	All      bool `json:"all"`
}

// GameFilters is the state of the filter screen. A group with All set does
// not restrict anything regardless of its other toggles.
type GameFilters struct {
	GameType   GameTypeFacet   `json:"game_type"`
	SkillLevel SkillLevelFacet `json:"skill_level"`
	TimeWindow TimeWindowFacet `json:"time_window"`
	// RadiusMiles limits games to courts within this distance of the viewer.
	// Zero means no limit.
	RadiusMiles float64 `json:"radius_miles"`
}

const DefaultRadiusMiles = 25

func DefaultFilters() GameFilters {
	return GameFilters{
		GameType:    GameTypeFacet{All: true},
		SkillLevel:  SkillLevelFacet{All: true},
		TimeWindow:  TimeWindowFacet{All: true},
		RadiusMiles: DefaultRadiusMiles,
	}
}

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartOfDay returns midnight of now's day in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func SoonWindow(now time.Time) Window {
	return Window{Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)}
}

func TodayWindow(now time.Time) Window {
	start := StartOfDay(now)
	return Window{Start: start, End: start.Add(24*time.Hour - time.Millisecond)}
}

func ThisWeekWindow(now time.Time) Window {
	start := StartOfDay(now)
	return Window{Start: start, End: start.Add(7*24*time.Hour - time.Millisecond)}
}

// Windows returns the windows selected in f, or nil when none is selected.
func (f TimeWindowFacet) Windows(now time.Time) []Window {
	var ws []Window
	if f.Soon {
		ws = append(ws, SoonWindow(now))
	}
	if f.Today {
		ws = append(ws, TodayWindow(now))
	}
	if f.ThisWeek {
		ws = append(ws, ThisWeekWindow(now))
	}
	return ws
}

// FilterGames applies the game type, skill level and time window facets in
// that order. A group that selects nothing without All yields an empty
// result.
func FilterGames(games []models.GameWithPlayers, f GameFilters, now time.Time) []models.GameWithPlayers {
	out := filterByGameType(games, f.GameType)
	out = filterBySkillLevel(out, f.SkillLevel)
	out = filterByTimeWindow(out, f.TimeWindow, now)
	return out
}

// Apply runs the facet filters, the radius limit and the final ordering.
func Apply(games []models.GameWithPlayers, f GameFilters, now time.Time) []models.GameWithPlayers {
	out := FilterGames(games, f, now)
	out = WithinRadius(out, f.RadiusMiles)
	SortBySchedule(out)
	return out
}

func filterByGameType(games []models.GameWithPlayers, f GameTypeFacet) []models.GameWithPlayers {
	if f.All {
		return games
	}
	if !f.Singles && !f.Doubles {
		return []models.GameWithPlayers{}
	}
	return keep(games, func(g models.GameWithPlayers) bool {
		return (f.Singles && g.GameType == models.GameTypeSingles) ||
			(f.Doubles && g.GameType == models.GameTypeDoubles)
	})
}

func filterBySkillLevel(games []models.GameWithPlayers, f SkillLevelFacet) []models.GameWithPlayers {
	if f.All {
		return games
	}
	levels := f.Selected()
	if len(levels) == 0 {
		return []models.GameWithPlayers{}
	}
	return keep(games, func(g models.GameWithPlayers) bool {
		return slices.ContainsFunc(levels, func(l models.SkillLevel) bool {
			return strings.EqualFold(string(g.SkillLevel), string(l))
		})
	})
}

func filterByTimeWindow(games []models.GameWithPlayers, f TimeWindowFacet, now time.Time) []models.GameWithPlayers {
	if f.All {
		return games
	}
	windows := f.Windows(now)
	if len(windows) == 0 {
		return []models.GameWithPlayers{}
	}
	return keep(games, func(g models.GameWithPlayers) bool {
		return slices.ContainsFunc(windows, func(w Window) bool {
			return w.Contains(g.ScheduledAt)
		})
	})
}

// WithinRadius drops games whose known distance exceeds radius. Games with
// no distance (no viewer location or no court coordinates) are kept.
func WithinRadius(games []models.GameWithPlayers, radius float64) []models.GameWithPlayers {
	if radius <= 0 {
		return games
	}
	return keep(games, func(g models.GameWithPlayers) bool {
		return g.DistanceValue == nil || *g.DistanceValue <= radius
	})
}

// SortBySchedule orders games earliest first.
func SortBySchedule(games []models.GameWithPlayers) {
	slices.SortStableFunc(games, func(a, b models.GameWithPlayers) int {
		return a.ScheduledAt.Compare(b.ScheduledAt)
	})
}

func keep[T any](in []T, pred func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}
