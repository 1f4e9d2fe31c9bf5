package models

import "time"

// Partner is a doubles partner saved by a user. Partners are not accounts.
type Partner struct {
	ID          int         `json:"id" db:"id"`
	UserID      int         `json:"user_id" db:"user_id"`
	Name        string      `json:"name" db:"name"`
	SkillLevel  *SkillLevel `json:"skill_level,omitempty" db:"skill_level"`
	PhoneNumber *string     `json:"phone_number,omitempty" db:"phone_number"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// PartnerInput is what a user fills in to save a partner.
type PartnerInput struct {
	Name        string      `json:"name"`
	SkillLevel  *SkillLevel `json:"skill_level,omitempty"`
	PhoneNumber *string     `json:"phone_number,omitempty"`
}
