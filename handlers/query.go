package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NicoBaldowine/pickleplay/listing"
	"github.com/NicoBaldowine/pickleplay/location"
)

// fixFromQuery reads lat, lng and the optional fixed_at (RFC 3339) query
// parameters. A missing or stale position yields a nil fix, which listings
// treat as "distance unknown".
func fixFromQuery(q url.Values, now time.Time, maxAge time.Duration) (*location.Fix, error) {
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("lat and lng must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q", lngStr)
	}

	fix := &location.Fix{
		Coordinate: location.Coordinate{Latitude: lat, Longitude: lng},
		CapturedAt: now,
	}
	if s := q.Get("fixed_at"); s != "" {
		at, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid fixed_at %q: expected RFC 3339", s)
		}
		fix.CapturedAt = at
	}

	usable, err := location.Usable(fix, now, maxAge)
	switch {
	case errors.Is(err, location.ErrStale):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &usable, nil
}

// filtersFromQuery builds listing filters from comma separated facet
// parameters: game_type, skill_level and time (values or "all"), plus
// radius in miles. An absent facet means "all"; a facet given with an empty
// value selects nothing.
func filtersFromQuery(q url.Values) (listing.GameFilters, error) {
	f := listing.DefaultFilters()

	if vals, ok := facetValues(q, "game_type"); ok {
		f.GameType = listing.GameTypeFacet{}
		for _, v := range vals {
			switch v {
			case "all":
				f.GameType.All = true
			case "singles":
				f.GameType.Singles = true
			case "doubles":
				f.GameType.Doubles = true
			default:
				return f, fmt.Errorf("unknown game_type %q", v)
			}
		}
	}

	if vals, ok := facetValues(q, "skill_level"); ok {
		f.SkillLevel = listing.SkillLevelFacet{}
		for _, v := range vals {
			switch v {
			case "all":
				f.SkillLevel.All = true
			case "beginner":
				f.SkillLevel.Beginner = true
			case "intermediate":
				f.SkillLevel.Intermediate = true
			case "advanced":
				f.SkillLevel.Advanced = true
			case "expert":
				f.SkillLevel.Expert = true
			default:
				return f, fmt.Errorf("unknown skill_level %q", v)
			}
		}
	}

	if vals, ok := facetValues(q, "time"); ok {
		f.TimeWindow = listing.TimeWindowFacet{}
		for _, v := range vals {
			switch v {
			case "all":
				f.TimeWindow.All = true
			case "soon":
				f.TimeWindow.Soon = true
			case "today":
				f.TimeWindow.Today = true
			case "this_week", "thisweek":
				f.TimeWindow.ThisWeek = true
			default:
				return f, fmt.Errorf("unknown time window %q", v)
			}
		}
	}

	if s := q.Get("radius"); s != "" {
		radius, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
			return f, fmt.Errorf("invalid radius %q", s)
		}
		f.RadiusMiles = radius
	}
	return f, nil
}

func facetValues(q url.Values, key string) ([]string, bool) {
	if !q.Has(key) {
		return nil, false
	}
	var out []string
	for _, part := range strings.Split(q.Get(key), ",") {
		if v := strings.ToLower(strings.TrimSpace(part)); v != "" {
			out = append(out, v)
		}
	}
	return out, true
}
