// Package mockrepo holds testify mocks of the repository interfaces.
package mockrepo

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/NicoBaldowine/pickleplay/models"
)

type Users struct {
	mock.Mock
}

func (m *Users) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Users) GetByID(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)

	var u *models.User
	if args.Get(0) != nil {
		u = args.Get(0).(*models.User)
	}
	return u, args.Error(1)
}

func (m *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)

	var u *models.User
	if args.Get(0) != nil {
		u = args.Get(0).(*models.User)
	}
	return u, args.Error(1)
}

func (m *Users) ListByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)

	var r []models.User
	if args.Get(0) != nil {
		r = args.Get(0).([]models.User)
	}
	return r, args.Error(1)
}

func (m *Users) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Users) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *Users) UpdateAvatarKey(ctx context.Context, id int, key *string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

type Games struct {
	mock.Mock
}

func (m *Games) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *Games) GetByID(ctx context.Context, id int) (*models.Game, error) {
	args := m.Called(ctx, id)

	var g *models.Game
	if args.Get(0) != nil {
		g = args.Get(0).(*models.Game)
	}
	return g, args.Error(1)
}

func (m *Games) ListOpen(ctx context.Context, from time.Time, excludeCreatorID int) ([]models.Game, error) {
	args := m.Called(ctx, from, excludeCreatorID)

	var r []models.Game
	if args.Get(0) != nil {
		r = args.Get(0).([]models.Game)
	}
	return r, args.Error(1)
}

func (m *Games) ListByCreator(ctx context.Context, creatorID int) ([]models.Game, error) {
	args := m.Called(ctx, creatorID)

	var r []models.Game
	if args.Get(0) != nil {
		r = args.Get(0).([]models.Game)
	}
	return r, args.Error(1)
}

func (m *Games) Delete(ctx context.Context, id, creatorID int) error {
	args := m.Called(ctx, id, creatorID)
	return args.Error(0)
}

func (m *Games) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type Courts struct {
	mock.Mock
}

func (m *Courts) GetByID(ctx context.Context, id int) (*models.Court, error) {
	args := m.Called(ctx, id)

	var c *models.Court
	if args.Get(0) != nil {
		c = args.Get(0).(*models.Court)
	}
	return c, args.Error(1)
}

func (m *Courts) ListByCity(ctx context.Context, city string) ([]models.Court, error) {
	args := m.Called(ctx, city)

	var r []models.Court
	if args.Get(0) != nil {
		r = args.Get(0).([]models.Court)
	}
	return r, args.Error(1)
}

func (m *Courts) ListByIDs(ctx context.Context, ids []int) ([]models.Court, error) {
	args := m.Called(ctx, ids)

	var r []models.Court
	if args.Get(0) != nil {
		r = args.Get(0).([]models.Court)
	}
	return r, args.Error(1)
}

type Partners struct {
	mock.Mock
}

func (m *Partners) Create(ctx context.Context, partner *models.Partner) error {
	args := m.Called(ctx, partner)
	return args.Error(0)
}

func (m *Partners) ListByUser(ctx context.Context, userID int) ([]models.Partner, error) {
	args := m.Called(ctx, userID)

	var r []models.Partner
	if args.Get(0) != nil {
		r = args.Get(0).([]models.Partner)
	}
	return r, args.Error(1)
}

func (m *Partners) ListByIDs(ctx context.Context, ids []int) ([]models.Partner, error) {
	args := m.Called(ctx, ids)

	var r []models.Partner
	if args.Get(0) != nil {
		r = args.Get(0).([]models.Partner)
	}
	return r, args.Error(1)
}

func (m *Partners) Delete(ctx context.Context, id, userID int) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
