package listing

import (
	"reflect"
	"testing"
	"time"

	"github.com/NicoBaldowine/pickleplay/models"
)

var denverTZ = time.FixedZone("MST", -7*60*60)

// 10:00 local on a Friday.
var now = time.Date(2026, 5, 15, 10, 0, 0, 0, denverTZ)

func game(id int, gt models.GameType, level string, at time.Time) models.GameWithPlayers {
	return models.GameWithPlayers{Game: models.Game{
		ID:          id,
		GameType:    gt,
		SkillLevel:  models.SkillLevel(level),
		ScheduledAt: at,
	}}
}

func ids(games []models.GameWithPlayers) []int {
	out := []int{}
	for _, g := range games {
		out = append(out, g.ID)
	}
	return out
}

func fixture() []models.GameWithPlayers {
	return []models.GameWithPlayers{
		game(1, models.GameTypeSingles, "beginner", now.Add(90*time.Minute)),
		game(2, models.GameTypeDoubles, "Intermediate", now.Add(3*time.Hour)),
		game(3, models.GameTypeDoubles, "advanced", now.Add(3*24*time.Hour)),
		game(4, models.GameTypeSingles, "EXPERT", now.Add(8*24*time.Hour)),
	}
}

func TestFilterGamesGameType(t *testing.T) {
	tests := map[string]struct {
		facet GameTypeFacet
		want  []int
	}{
		"all":              {facet: GameTypeFacet{All: true}, want: []int{1, 2, 3, 4}},
		"all ignores rest": {facet: GameTypeFacet{All: true, Singles: true}, want: []int{1, 2, 3, 4}},
		"singles":          {facet: GameTypeFacet{Singles: true}, want: []int{1, 4}},
		"doubles":          {facet: GameTypeFacet{Doubles: true}, want: []int{2, 3}},
		"both":             {facet: GameTypeFacet{Singles: true, Doubles: true}, want: []int{1, 2, 3, 4}},
		"nothing selected": {facet: GameTypeFacet{}, want: []int{}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := DefaultFilters()
			f.GameType = tc.facet
			got := ids(FilterGames(fixture(), f, now))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterGamesNoGameTypeIsEmptyForAnyInput(t *testing.T) {
	f := DefaultFilters()
	f.GameType = GameTypeFacet{Singles: false, Doubles: false, All: false}

	var many []models.GameWithPlayers
	for i := 0; i < 500; i++ {
		many = append(many, game(i, models.GameTypeSingles, "beginner", now.Add(time.Duration(i)*time.Minute)))
	}
	if got := FilterGames(many, f, now); len(got) != 0 {
		t.Errorf("expected empty result, got %d games", len(got))
	}
}

func TestFilterGamesSkillLevel(t *testing.T) {
	tests := map[string]struct {
		facet SkillLevelFacet
		want  []int
	}{
		"all":              {facet: SkillLevelFacet{All: true}, want: []int{1, 2, 3, 4}},
		"case insensitive": {facet: SkillLevelFacet{Intermediate: true, Expert: true}, want: []int{2, 4}},
		"single level":     {facet: SkillLevelFacet{Beginner: true}, want: []int{1}},
		"nothing selected": {facet: SkillLevelFacet{}, want: []int{}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := DefaultFilters()
			f.SkillLevel = tc.facet
			got := ids(FilterGames(fixture(), f, now))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterGamesTimeWindow(t *testing.T) {
	tests := map[string]struct {
		facet TimeWindowFacet
		want  []int
	}{
		"all":              {facet: TimeWindowFacet{All: true}, want: []int{1, 2, 3, 4}},
		"soon":             {facet: TimeWindowFacet{Soon: true}, want: []int{1}},
		"today":            {facet: TimeWindowFacet{Today: true}, want: []int{1, 2}},
		"this week":        {facet: TimeWindowFacet{ThisWeek: true}, want: []int{1, 2, 3}},
		"soon or week":     {facet: TimeWindowFacet{Soon: true, ThisWeek: true}, want: []int{1, 2, 3}},
		"nothing selected": {facet: TimeWindowFacet{}, want: []int{}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := DefaultFilters()
			f.TimeWindow = tc.facet
			got := ids(FilterGames(fixture(), f, now))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTodayWindowBoundaries(t *testing.T) {
	w := TodayWindow(now)
	midnight := time.Date(2026, 5, 15, 0, 0, 0, 0, denverTZ)

	tests := map[string]struct {
		at   time.Time
		want bool
	}{
		"start of day":     {midnight, true},
		"last millisecond": {midnight.Add(24*time.Hour - time.Millisecond), true},
		"next midnight":    {midnight.Add(24 * time.Hour), false},
		"yesterday":        {midnight.Add(-time.Millisecond), false},
		"three hours out":  {now.Add(3 * time.Hour), true},
		"eight days out":   {now.Add(8 * 24 * time.Hour), false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := w.Contains(tc.at); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestSoonWindowIsInclusive(t *testing.T) {
	w := SoonWindow(now)
	if !w.Contains(now.Add(time.Hour)) || !w.Contains(now.Add(2*time.Hour)) {
		t.Error("soon window should include both ends")
	}
	if w.Contains(now.Add(59*time.Minute)) || w.Contains(now.Add(2*time.Hour+time.Second)) {
		t.Error("soon window should exclude instants outside [now+1h, now+2h]")
	}
}

func TestSortBySchedule(t *testing.T) {
	day := time.Date(2026, 5, 16, 0, 0, 0, 0, denverTZ)
	games := []models.GameWithPlayers{
		game(14, models.GameTypeSingles, "beginner", day.Add(14*time.Hour)),
		game(9, models.GameTypeSingles, "beginner", day.Add(9*time.Hour)),
		game(23, models.GameTypeSingles, "beginner", day.Add(23*time.Hour)),
	}

	got := ids(Apply(games, DefaultFilters(), now))
	want := []int{9, 14, 23}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWithinRadius(t *testing.T) {
	near, far := 2.5, 40.0
	games := []models.GameWithPlayers{
		game(1, models.GameTypeSingles, "beginner", now),
		game(2, models.GameTypeSingles, "beginner", now),
		game(3, models.GameTypeSingles, "beginner", now),
	}
	games[0].DistanceValue = &near
	games[1].DistanceValue = &far

	tests := map[string]struct {
		radius float64
		want   []int
	}{
		"no limit":      {radius: 0, want: []int{1, 2, 3}},
		"limit applied": {radius: 25, want: []int{1, 3}},
		"wide limit":    {radius: 50, want: []int{1, 2, 3}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := ids(WithinRadius(games, tc.radius))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
