package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NicoBaldowine/pickleplay/listing"
	"github.com/NicoBaldowine/pickleplay/location"
	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/repositories"
)

type CourtService interface {
	// GetCourtsByCity lists the courts in city, nearest first when a fix is
	// given. An empty city lists every court.
	GetCourtsByCity(ctx context.Context, city string, fix *location.Fix) ([]models.Court, error)
	GetCourt(ctx context.Context, id int) (*models.Court, error)
}

type courtService struct {
	courtRepo repositories.CourtRepository
}

func NewCourtService(courtRepo repositories.CourtRepository) CourtService {
	return &courtService{courtRepo: courtRepo}
}

func (s *courtService) GetCourtsByCity(ctx context.Context, city string, fix *location.Fix) ([]models.Court, error) {
	courts, err := s.courtRepo.ListByCity(ctx, strings.TrimSpace(city))
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for city %q: %w", city, err)
	}
	if courts == nil {
		return []models.Court{}, nil
	}
	return listing.AnnotateCourts(courts, fix), nil
}

func (s *courtService) GetCourt(ctx context.Context, id int) (*models.Court, error) {
	court, err := s.courtRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %d: %w", id, err)
	}
	return court, nil
}
