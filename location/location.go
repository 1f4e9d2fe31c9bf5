// Package location holds the geographic helpers used to annotate courts and
// games with their distance from the player.
//
// A position is always passed explicitly as a Fix carrying the time it was
// captured. Nothing here caches the last known position; callers decide how
// old a fix may be before it is ignored.
package location

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// EarthRadiusMiles is the mean Earth radius used by CalculateDistance.
const EarthRadiusMiles = 3959.0

// UnknownDistance is the displayed distance of entities without
// coordinates. Listings order those entities last on their own; the value
// is not a sort key.
const UnknownDistance = 999.0

var (
	ErrUnavailable = errors.New("location unavailable")
	ErrStale       = errors.New("location fix is stale")
	ErrOutOfRange  = errors.New("coordinates out of range")
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return ErrOutOfRange
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: (%f, %f)", ErrOutOfRange, c.Latitude, c.Longitude)
	}
	return nil
}

// Fix is a position reported by the device together with the moment it was
// captured.
type Fix struct {
	Coordinate
	CapturedAt time.Time `json:"captured_at"`
}

// Fresh reports whether the fix is young enough to be used at now.
// A zero maxAge disables the check.
func (f Fix) Fresh(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	if f.CapturedAt.IsZero() {
		return false
	}
	return now.Sub(f.CapturedAt) <= maxAge
}

// Usable returns the fix when it is present and fresh, or an error explaining
// why it cannot be used.
func Usable(f *Fix, now time.Time, maxAge time.Duration) (Fix, error) {
	if f == nil {
		return Fix{}, ErrUnavailable
	}
	if err := f.Validate(); err != nil {
		return Fix{}, err
	}
	if !f.Fresh(now, maxAge) {
		return Fix{}, ErrStale
	}
	return *f, nil
}

// CalculateDistance returns the great-circle distance in miles between two
// points using the Haversine formula.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// Between is CalculateDistance for two coordinates.
func Between(a, b Coordinate) float64 {
	return CalculateDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Round rounds miles to one decimal place.
func Round(miles float64) float64 {
	return math.Round(miles*10) / 10
}

// FormatDistance renders a distance for listings: "< 0.1 mi" for very short
// distances, otherwise the value rounded to one decimal ("3.2 mi", "12 mi").
func FormatDistance(miles float64) string {
	if miles < 0.1 {
		return "< 0.1 mi"
	}
	return strconv.FormatFloat(Round(miles), 'f', -1, 64) + " mi"
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
