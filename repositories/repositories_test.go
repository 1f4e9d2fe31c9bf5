package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicoBaldowine/pickleplay/models"
)

var emailCtr atomic.Int32

func createUser(t *testing.T, users UserRepository) *models.User {
	t.Helper()
	n := emailCtr.Add(1)
	u := &models.User{
		FirstName:    "Dana",
		LastName:     "Reyes",
		Email:        fmt.Sprintf("dana%d@example.com", n),
		PasswordHash: "hash",
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUserRepository(t *testing.T) {
	conn := requireDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(conn)

	u := createUser(t, users)
	assert.NotZero(t, u.ID)

	dup := &models.User{FirstName: "X", Email: u.Email, PasswordHash: "h"}
	assert.ErrorIs(t, users.Create(ctx, dup), ErrUserEmailConflict)

	got, err := users.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.PhoneNumber)

	phone := "5551234567"
	level := models.SkillAdvanced
	got.PhoneNumber = &phone
	got.SkillLevel = &level
	require.NoError(t, users.Update(ctx, got))

	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SkillLevel)
	assert.Equal(t, models.SkillAdvanced, *got.SkillLevel)

	key := "avatars/abc.jpg"
	require.NoError(t, users.UpdateAvatarKey(ctx, u.ID, &key))
	list, err := users.ListByIDs(ctx, []int{u.ID, 999999})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, key, *list[0].AvatarKey)

	_, err = users.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, users.UpdatePassword(ctx, 999999, "x"), ErrUserNotFound)
}

func TestGameRepository(t *testing.T) {
	conn := requireDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(conn)
	games := NewPostgresGameRepository(conn)
	courts := NewPostgresCourtRepository(conn)

	creator := createUser(t, users)
	viewer := createUser(t, users)

	denver, err := courts.ListByCity(ctx, "denver")
	require.NoError(t, err)
	require.NotEmpty(t, denver)

	now := time.Now().UTC().Truncate(time.Second)
	future := &models.Game{
		CreatorID:   creator.ID,
		GameType:    models.GameTypeSingles,
		SkillLevel:  models.SkillBeginner,
		CourtID:     denver[0].ID,
		ScheduledAt: now.Add(2 * time.Hour),
		PhoneNumber: "5551234567",
	}
	past := *future
	past.ScheduledAt = now.Add(-time.Hour)

	require.NoError(t, games.Create(ctx, future))
	require.NoError(t, games.Create(ctx, &past))
	assert.Equal(t, models.GameStatusOpen, future.Status)

	bad := *future
	bad.CourtID = 999999
	assert.ErrorIs(t, games.Create(ctx, &bad), ErrGameCourtInvalid)

	n, err := games.ExpireBefore(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	expired, err := games.GetByID(ctx, past.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusExpired, expired.Status)

	open, err := games.ListOpen(ctx, now, viewer.ID)
	require.NoError(t, err)
	assert.True(t, containsGame(open, future.ID))
	assert.False(t, containsGame(open, past.ID))

	mine, err := games.ListOpen(ctx, now, creator.ID)
	require.NoError(t, err)
	assert.False(t, containsGame(mine, future.ID), "own games are excluded")

	assert.ErrorIs(t, games.Delete(ctx, future.ID, viewer.ID), ErrGameNotFound)
	require.NoError(t, games.Delete(ctx, future.ID, creator.ID))
	_, err = games.GetByID(ctx, future.ID)
	assert.True(t, errors.Is(err, ErrGameNotFound))
}

func TestPartnerRepository(t *testing.T) {
	conn := requireDB(t)
	ctx := context.Background()
	users := NewPostgresUserRepository(conn)
	partners := NewPostgresPartnerRepository(conn)

	owner := createUser(t, users)
	p := &models.Partner{UserID: owner.ID, Name: "Sam Lee"}
	require.NoError(t, partners.Create(ctx, p))
	assert.ErrorIs(t, partners.Create(ctx, &models.Partner{UserID: owner.ID, Name: "Sam Lee"}), ErrPartnerNameConflict)
	assert.ErrorIs(t, partners.Create(ctx, &models.Partner{UserID: 999999, Name: "Ghost"}), ErrPartnerOwnerInvalid)

	list, err := partners.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sam Lee", list[0].Name)

	assert.ErrorIs(t, partners.Delete(ctx, p.ID, owner.ID+1000), ErrPartnerNotFound)
	require.NoError(t, partners.Delete(ctx, p.ID, owner.ID))
}

func TestCourtRepository(t *testing.T) {
	conn := requireDB(t)
	ctx := context.Background()
	courts := NewPostgresCourtRepository(conn)

	all, err := courts.ListByCity(ctx, "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 4)

	var unpinned bool
	for _, c := range all {
		if _, ok := c.Coordinate(); !ok {
			unpinned = true
		}
	}
	assert.True(t, unpinned, "seed data includes a court without coordinates")

	_, err = courts.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, ErrCourtNotFound)
}

func containsGame(games []models.Game, id int) bool {
	for _, g := range games {
		if g.ID == id {
			return true
		}
	}
	return false
}
