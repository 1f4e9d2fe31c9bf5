package models

import "time"

type User struct {
	ID           int         `json:"id" db:"id"`
	FirstName    string      `json:"first_name" db:"first_name"`
	LastName     string      `json:"last_name" db:"last_name"`
	Email        string      `json:"email" db:"email"`
	PhoneNumber  *string     `json:"phone_number,omitempty" db:"phone_number"`
	SkillLevel   *SkillLevel `json:"skill_level,omitempty" db:"skill_level"`
	PasswordHash string      `json:"-" db:"password_hash"`
	AvatarKey    *string     `json:"-" db:"avatar_key"`
	AvatarURL    *string     `json:"avatar_url,omitempty" db:"-"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// DisplayName is "First L." when a last name is known.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + string([]rune(u.LastName)[:1]) + "."
}
