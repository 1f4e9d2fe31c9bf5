package models

import (
	"strings"
	"time"
)

type GameType string

const (
	GameTypeSingles GameType = "singles"
	GameTypeDoubles GameType = "doubles"
)

func (t GameType) Valid() bool {
	return t == GameTypeSingles || t == GameTypeDoubles
}

// SkillLevel values are stored lower-case; comparisons elsewhere are
// case-insensitive because older rows were written capitalised.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

var SkillLevels = []SkillLevel{SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert}

func ParseSkillLevel(s string) (SkillLevel, bool) {
	for _, l := range SkillLevels {
		if strings.EqualFold(string(l), strings.TrimSpace(s)) {
			return l, true
		}
	}
	return "", false
}

type GameStatus string

const (
	GameStatusOpen      GameStatus = "open"
	GameStatusCancelled GameStatus = "cancelled"
	GameStatusExpired   GameStatus = "expired"
)

// Game is a scheduled game as stored in the games table.
type Game struct {
	ID          int        `json:"id" db:"id"`
	CreatorID   int        `json:"creator_id" db:"creator_id"`
	GameType    GameType   `json:"game_type" db:"game_type"`
	SkillLevel  SkillLevel `json:"skill_level" db:"skill_level"`
	CourtID     int        `json:"court_id" db:"court_id"`
	ScheduledAt time.Time  `json:"scheduled_at" db:"scheduled_at"`
	PartnerName *string    `json:"partner_name,omitempty" db:"partner_name"`
	PartnerID   *int       `json:"partner_id,omitempty" db:"partner_id"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	PhoneNumber string     `json:"phone_number" db:"phone_number"`
	Status      GameStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// NewGame is the record handed to the game service when a game is created.
type NewGame struct {
	CreatorID   int        `json:"creator_id"`
	GameType    GameType   `json:"game_type"`
	SkillLevel  SkillLevel `json:"skill_level"`
	CourtID     int        `json:"court_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	PartnerName *string    `json:"partner_name,omitempty"`
	PartnerID   *int       `json:"partner_id,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	PhoneNumber string     `json:"phone_number"`
}

type PlayerSummary struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	SkillLevel *SkillLevel `json:"skill_level,omitempty"`
	AvatarURL  *string     `json:"avatar_url,omitempty"`
}

// GameWithPlayers is a listing row: the game plus its court and people,
// enriched with the distance from the viewer when a location is known.
type GameWithPlayers struct {
	Game
	Court         *Court         `json:"court,omitempty"`
	Creator       *PlayerSummary `json:"creator,omitempty"`
	Partner       *PlayerSummary `json:"partner,omitempty"`
	DisplayTime   string         `json:"display_time,omitempty"`
	Distance      string         `json:"distance,omitempty"`
	DistanceValue *float64       `json:"distance_value,omitempty"`
}
