package services

import "github.com/NicoBaldowine/pickleplay/apperr"

// Shared errors used by the services and mapped to HTTP by the handlers.
// Each carries an apperr.Kind so callers branch with apperr.KindOf rather
// than by comparing messages.
var (
	ErrNotFound = apperr.New(apperr.KindNotFound, "requested resource not found")

	// validation
	ErrPasswordTooShort   = apperr.Validation("password", "password must be at least 8 characters")
	ErrNameRequired       = apperr.Validation("first_name", "first name is required")
	ErrEmailRequired      = apperr.Validation("email", "email is required")
	ErrUnsupportedImage   = apperr.Validation("avatar", "avatar must be a JPEG, PNG, GIF or WebP image")
	ErrInvalidSkillLevel  = apperr.Validation("skill_level", "skill level must be beginner, intermediate, advanced or expert")
	ErrInvalidGameType    = apperr.Validation("game_type", "game type must be singles or doubles")
	ErrInvalidPhone       = apperr.Validation("phone_number", "Please enter a valid 10-digit phone number")
	ErrPhoneRequired      = apperr.Validation("phone_number", "Phone number is required")
	ErrNotesTooLong       = apperr.Validation("notes", "Notes must be 120 characters or fewer")
	ErrGameInPast         = apperr.Validation("scheduled_time", "Please pick a time in the future")
	ErrUnknownCourt       = apperr.Validation("court_id", "Please choose a court")
	ErrPartnerNameMissing = apperr.Validation("name", "Partner name is required")
	ErrUnknownPreference  = apperr.Validation("preference", "unknown notification preference")

	// conflicts
	ErrUserEmailConflict   = apperr.New(apperr.KindConflict, "email address is already in use")
	ErrPartnerNameConflict = apperr.New(apperr.KindConflict, "you already have a partner with this name")

	// authentication and authorization
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid email or password")
	ErrInvalidToken       = apperr.New(apperr.KindUnauthorized, "invalid authentication token")
	ErrSessionExpired     = apperr.New(apperr.KindSessionExpired, "Session expired")
	ErrForbiddenOperation = apperr.New(apperr.KindForbidden, "operation not allowed for the current user")

	// entity specific
	ErrUserNotFound    = apperr.New(apperr.KindNotFound, "user not found")
	ErrGameNotFound    = apperr.New(apperr.KindNotFound, "game not found")
	ErrCourtNotFound   = apperr.New(apperr.KindNotFound, "court not found")
	ErrPartnerNotFound = apperr.New(apperr.KindNotFound, "partner not found")

	// external
	ErrUploadTimeout = apperr.New(apperr.KindTimeout, "Avatar upload timed out. Please try again.")
)
