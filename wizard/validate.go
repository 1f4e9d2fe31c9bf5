package wizard

import (
	"strings"
	"unicode/utf8"

	"github.com/NicoBaldowine/pickleplay/apperr"
)

const MaxNotesLength = 120

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone accepts an empty value (the field is optional where this is
// used), ten digits, or eleven digits with a leading country code of 1.
func ValidPhone(phone string) bool {
	if strings.TrimSpace(phone) == "" {
		return true
	}
	digits := NormalizePhone(phone)
	switch len(digits) {
	case 10:
		return true
	case 11:
		return digits[0] == '1'
	}
	return false
}

// ValidateSubmission checks the review-screen inputs. The phone number is
// required here even though ValidPhone accepts an empty value.
func ValidateSubmission(d Draft) error {
	if d.PlayerLevel == "" {
		return apperr.Validation("player_level", "Please select a skill level")
	}
	if d.GameType == "" || d.CourtID == 0 || d.ScheduledTime == nil {
		return apperr.Validation("draft", "Please complete all steps before creating the game")
	}
	if utf8.RuneCountInString(d.Notes) > MaxNotesLength {
		return apperr.Validation("notes", "Notes must be 120 characters or fewer")
	}
	if strings.TrimSpace(d.PhoneNumber) == "" {
		return apperr.Validation("phone_number", "Phone number is required")
	}
	if !ValidPhone(d.PhoneNumber) {
		return apperr.Validation("phone_number", "Please enter a valid 10-digit phone number")
	}
	return nil
}
