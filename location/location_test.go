package location

import (
	"errors"
	"testing"
	"time"
)

func TestCalculateDistance(t *testing.T) {
	tests := map[string]struct {
		lat1, lon1, lat2, lon2 float64
		min, max               float64
	}{
		"same point":                {39.7392, -104.9903, 39.7392, -104.9903, 0, 0},
		"one degree of longitude":   {39.7392, -104.9903, 39.7392, -103.9903, 53, 54},
		"one degree of latitude":    {39.7392, -104.9903, 40.7392, -104.9903, 69, 69.2},
		"denver to colorado spring": {39.7392, -104.9903, 38.8339, -104.8214, 62, 64},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := CalculateDistance(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if got < tc.min || got > tc.max {
				t.Errorf("distance = %f, want between %f and %f", got, tc.min, tc.max)
			}
		})
	}
}

func TestCalculateDistanceSymmetric(t *testing.T) {
	a := CalculateDistance(39.7392, -104.9903, 40.0150, -105.2705)
	b := CalculateDistance(40.0150, -105.2705, 39.7392, -104.9903)
	if a != b {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestFormatDistance(t *testing.T) {
	tests := map[string]struct {
		miles float64
		want  string
	}{
		"zero":         {0, "< 0.1 mi"},
		"just below":   {0.09, "< 0.1 mi"},
		"threshold":    {0.1, "0.1 mi"},
		"rounds down":  {3.24, "3.2 mi"},
		"rounds up":    {3.25, "3.3 mi"},
		"whole number": {12.0, "12 mi"},
		"denver east":  {53.12, "53.1 mi"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := FormatDistance(tc.miles); got != tc.want {
				t.Errorf("FormatDistance(%f) = %q, want %q", tc.miles, got, tc.want)
			}
		})
	}
}

func TestUsable(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	denver := Coordinate{Latitude: 39.7392, Longitude: -104.9903}

	tests := map[string]struct {
		fix     *Fix
		maxAge  time.Duration
		wantErr error
	}{
		"missing fix":        {fix: nil, maxAge: time.Minute, wantErr: ErrUnavailable},
		"fresh fix":          {fix: &Fix{Coordinate: denver, CapturedAt: now.Add(-30 * time.Second)}, maxAge: time.Minute},
		"stale fix":          {fix: &Fix{Coordinate: denver, CapturedAt: now.Add(-2 * time.Minute)}, maxAge: time.Minute, wantErr: ErrStale},
		"no timestamp":       {fix: &Fix{Coordinate: denver}, maxAge: time.Minute, wantErr: ErrStale},
		"age check disabled": {fix: &Fix{Coordinate: denver}, maxAge: 0},
		"bad latitude":       {fix: &Fix{Coordinate: Coordinate{Latitude: 91}, CapturedAt: now}, maxAge: time.Minute, wantErr: ErrOutOfRange},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Usable(tc.fix, now, tc.maxAge)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
