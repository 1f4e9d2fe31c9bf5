package models

import (
	"time"

	"github.com/NicoBaldowine/pickleplay/location"
)

type Court struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	City      string    `json:"city" db:"city"`
	State     string    `json:"state" db:"state"`
	IsFree    bool      `json:"is_free" db:"is_free"`
	Latitude  *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64  `json:"longitude,omitempty" db:"longitude"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Filled per request from the viewer's location, never stored.
	Distance      string  `json:"distance,omitempty" db:"-"`
	DistanceValue float64 `json:"distance_value,omitempty" db:"-"`
}

// Coordinate returns the court position, ok is false when either
// coordinate is missing.
func (c *Court) Coordinate() (location.Coordinate, bool) {
	if c == nil || c.Latitude == nil || c.Longitude == nil {
		return location.Coordinate{}, false
	}
	return location.Coordinate{Latitude: *c.Latitude, Longitude: *c.Longitude}, true
}
