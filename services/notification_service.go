package services

import (
	"context"
	"fmt"

	"github.com/NicoBaldowine/pickleplay/models"
)

// PreferenceStore is the local key-value store holding per-user settings.
type PreferenceStore interface {
	NotificationPreferences(ctx context.Context, userID int) (models.NotificationPreferences, error)
	SaveNotificationPreferences(ctx context.Context, userID int, p models.NotificationPreferences) error
}

type NotificationService interface {
	GetPreferences(ctx context.Context, userID int) (models.NotificationPreferences, error)
	// UpdatePreferences applies the named toggles and saves the result.
	// Unknown names are rejected before anything is written.
	UpdatePreferences(ctx context.Context, userID int, changes map[string]bool) (models.NotificationPreferences, error)
}

type notificationService struct {
	store PreferenceStore
}

func NewNotificationService(store PreferenceStore) NotificationService {
	return &notificationService{store: store}
}

func (s *notificationService) GetPreferences(ctx context.Context, userID int) (models.NotificationPreferences, error) {
	p, err := s.store.NotificationPreferences(ctx, userID)
	if err != nil {
		return p, fmt.Errorf("failed to read notification preferences: %w", err)
	}
	return p, nil
}

func (s *notificationService) UpdatePreferences(ctx context.Context, userID int, changes map[string]bool) (models.NotificationPreferences, error) {
	for name := range changes {
		if toggle(&models.NotificationPreferences{}, name) == nil {
			return models.NotificationPreferences{}, fmt.Errorf("%w: %q", ErrUnknownPreference, name)
		}
	}

	p, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return p, err
	}
	for name, on := range changes {
		*toggle(&p, name) = on
	}
	if err := s.store.SaveNotificationPreferences(ctx, userID, p); err != nil {
		return p, fmt.Errorf("failed to save notification preferences: %w", err)
	}
	return p, nil
}

func toggle(p *models.NotificationPreferences, name string) *bool {
	switch name {
	case "game_reminders":
		return &p.GameReminders
	case "new_games_nearby":
		return &p.NewGamesNearby
	case "partner_requests":
		return &p.PartnerRequests
	case "game_updates":
		return &p.GameUpdates
	}
	return nil
}
