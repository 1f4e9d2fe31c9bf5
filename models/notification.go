package models

// NotificationPreferences are the four notification toggles shown in
// settings.
type NotificationPreferences struct {
	GameReminders   bool `json:"game_reminders"`
	NewGamesNearby  bool `json:"new_games_nearby"`
	PartnerRequests bool `json:"partner_requests"`
	GameUpdates     bool `json:"game_updates"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		GameReminders:   true,
		NewGamesNearby:  true,
		PartnerRequests: true,
		GameUpdates:     true,
	}
}

// Set flips a single toggle by its JSON name. It reports false for an
// unknown name.
func (p *NotificationPreferences) Set(name string, enabled bool) bool {
	switch name {
	case "game_reminders":
		p.GameReminders = enabled
	case "new_games_nearby":
		p.NewGamesNearby = enabled
	case "partner_requests":
		p.PartnerRequests = enabled
	case "game_updates":
		p.GameUpdates = enabled
	default:
		return false
	}
	return true
}
