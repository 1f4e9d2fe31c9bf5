package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/NicoBaldowine/pickleplay/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNotificationPreferencesDefaults(t *testing.T) {
	s := openTestStore(t)

	got, err := s.NotificationPreferences(context.Background(), 1)
	if err != nil {
		t.Fatalf("NotificationPreferences: %v", err)
	}
	if got != models.DefaultNotificationPreferences() {
		t.Errorf("got %+v, want all enabled", got)
	}
}

func TestNotificationPreferencesRoundTripPerUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := models.DefaultNotificationPreferences()
	p.Set("new_games_nearby", false)
	if err := s.SaveNotificationPreferences(ctx, 1, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.Set("game_updates", false)
	if err := s.SaveNotificationPreferences(ctx, 1, p); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := s.NotificationPreferences(ctx, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.NewGamesNearby || got.GameUpdates || !got.GameReminders {
		t.Errorf("unexpected preferences %+v", got)
	}

	other, err := s.NotificationPreferences(ctx, 2)
	if err != nil {
		t.Fatalf("load other user: %v", err)
	}
	if other != models.DefaultNotificationPreferences() {
		t.Errorf("other user should see defaults, got %+v", other)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(ctx, 3, "theme", "dark"); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	var theme string
	found, err := s.Get(ctx, 3, "theme", &theme)
	if err != nil || !found || theme != "dark" {
		t.Errorf("Get = (%q, %v, %v), want (dark, true, nil)", theme, found, err)
	}
}
