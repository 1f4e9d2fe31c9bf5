package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NicoBaldowine/pickleplay/location"
	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/repositories"
	"github.com/NicoBaldowine/pickleplay/repositories/mockrepo"
	"github.com/NicoBaldowine/pickleplay/wizard"
)

// The wizard saves partners through this service.
var _ wizard.PartnerCreator = (PartnerService)(nil)

func TestCreatePartner(t *testing.T) {
	repo := &mockrepo.Partners{}
	svc := NewPartnerService(repo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Partner")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Partner).ID = 11 }).
		Return(nil).Once()

	level := models.SkillLevel("Beginner")
	p, err := svc.CreatePartner(context.Background(), 7, models.PartnerInput{
		Name:        "  Sam Lee ",
		SkillLevel:  &level,
		PhoneNumber: ptr("555.123.4567"),
	})
	require.NoError(t, err)
	assert.Equal(t, 11, p.ID)
	assert.Equal(t, "Sam Lee", p.Name)
	assert.Equal(t, models.SkillBeginner, *p.SkillLevel)
	assert.Equal(t, "5551234567", *p.PhoneNumber)
}

func TestCreatePartnerErrors(t *testing.T) {
	repo := &mockrepo.Partners{}
	svc := NewPartnerService(repo)

	_, err := svc.CreatePartner(context.Background(), 7, models.PartnerInput{Name: " "})
	assert.ErrorIs(t, err, ErrPartnerNameMissing)

	repo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrPartnerNameConflict).Once()
	_, err = svc.CreatePartner(context.Background(), 7, models.PartnerInput{Name: "Sam"})
	assert.ErrorIs(t, err, ErrPartnerNameConflict)

	repo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrPartnerOwnerInvalid).Once()
	_, err = svc.CreatePartner(context.Background(), 7, models.PartnerInput{Name: "Sam"})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestDeletePartnerNotOwned(t *testing.T) {
	repo := &mockrepo.Partners{}
	repo.On("Delete", mock.Anything, 11, 8).Return(repositories.ErrPartnerNotFound)

	err := NewPartnerService(repo).DeletePartner(context.Background(), 8, 11)
	assert.ErrorIs(t, err, ErrPartnerNotFound)
}

func TestGetCourtsByCitySortsByDistance(t *testing.T) {
	repo := &mockrepo.Courts{}
	repo.On("ListByCity", mock.Anything, "Denver").Return([]models.Court{
		{ID: 1, Name: "Far", Latitude: ptr(39.90), Longitude: ptr(-105.10)},
		{ID: 2, Name: "Unmapped"},
		{ID: 3, Name: "Here", Latitude: ptr(39.7392), Longitude: ptr(-104.9903)},
	}, nil)
	svc := NewCourtService(repo)

	fix := &location.Fix{Coordinate: location.Coordinate{Latitude: 39.7392, Longitude: -104.9903}}
	courts, err := svc.GetCourtsByCity(context.Background(), " Denver ", fix)
	require.NoError(t, err)
	require.Len(t, courts, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{courts[0].ID, courts[1].ID, courts[2].ID})
	assert.Equal(t, "< 0.1 mi", courts[0].Distance)
	assert.Equal(t, location.UnknownDistance, courts[2].DistanceValue)

	unsorted, err := svc.GetCourtsByCity(context.Background(), "Denver", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, unsorted[0].ID, "no fix leaves order unchanged")
}

func TestGetCourtNotFound(t *testing.T) {
	repo := &mockrepo.Courts{}
	repo.On("GetByID", mock.Anything, 99).Return(nil, repositories.ErrCourtNotFound)

	_, err := NewCourtService(repo).GetCourt(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCourtNotFound)
}
