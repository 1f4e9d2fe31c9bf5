package listing

import (
	"cmp"
	"slices"

	"github.com/NicoBaldowine/pickleplay/location"
	"github.com/NicoBaldowine/pickleplay/models"
)

// AnnotateCourts returns a copy of courts with Distance and DistanceValue
// set relative to fix, ordered nearest first. Courts without coordinates
// come after every mapped court, however far, and show
// location.UnknownDistance. A nil fix returns courts unchanged: a missing
// location is not an error for listings.
func AnnotateCourts(courts []models.Court, fix *location.Fix) []models.Court {
	if fix == nil {
		return courts
	}

	out := make([]models.Court, len(courts))
	copy(out, courts)

	for i := range out {
		c, ok := out[i].Coordinate()
		if !ok {
			out[i].DistanceValue = location.UnknownDistance
			out[i].Distance = ""
			continue
		}
		miles := location.Between(fix.Coordinate, c)
		out[i].DistanceValue = location.Round(miles)
		out[i].Distance = location.FormatDistance(miles)
	}

	slices.SortStableFunc(out, func(a, b models.Court) int {
		_, aMapped := a.Coordinate()
		_, bMapped := b.Coordinate()
		switch {
		case aMapped && !bMapped:
			return -1
		case !aMapped && bMapped:
			return 1
		}
		return cmp.Compare(a.DistanceValue, b.DistanceValue)
	})
	return out
}

// AnnotateGames sets the distance of each game from its court. Games whose
// court has no coordinates are left without a distance.
func AnnotateGames(games []models.GameWithPlayers, fix *location.Fix) {
	if fix == nil {
		return
	}
	for i := range games {
		c, ok := games[i].Court.Coordinate()
		if !ok {
			continue
		}
		miles := location.Between(fix.Coordinate, c)
		rounded := location.Round(miles)
		games[i].DistanceValue = &rounded
		games[i].Distance = location.FormatDistance(miles)
	}
}
