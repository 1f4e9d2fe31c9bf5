package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/repositories"
	"github.com/NicoBaldowine/pickleplay/wizard"
)

type PartnerService interface {
	GetPartners(ctx context.Context, userID int) ([]models.Partner, error)
	CreatePartner(ctx context.Context, userID int, input models.PartnerInput) (*models.Partner, error)
	DeletePartner(ctx context.Context, userID, partnerID int) error
}

type partnerService struct {
	partnerRepo repositories.PartnerRepository
}

func NewPartnerService(partnerRepo repositories.PartnerRepository) PartnerService {
	return &partnerService{partnerRepo: partnerRepo}
}

func (s *partnerService) GetPartners(ctx context.Context, userID int) ([]models.Partner, error) {
	partners, err := s.partnerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners for user %d: %w", userID, err)
	}
	if partners == nil {
		return []models.Partner{}, nil
	}
	return partners, nil
}

func (s *partnerService) CreatePartner(ctx context.Context, userID int, input models.PartnerInput) (*models.Partner, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPartnerNameMissing
	}

	partner := &models.Partner{UserID: userID, Name: name}
	if input.SkillLevel != nil && *input.SkillLevel != "" {
		level, ok := models.ParseSkillLevel(string(*input.SkillLevel))
		if !ok {
			return nil, ErrInvalidSkillLevel
		}
		partner.SkillLevel = &level
	}
	if input.PhoneNumber != nil {
		phone := wizard.NormalizePhone(*input.PhoneNumber)
		if !wizard.ValidPhone(phone) {
			return nil, ErrInvalidPhone
		}
		partner.PhoneNumber = trimmedPtr(&phone)
	}

	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPartnerNameConflict):
			return nil, ErrPartnerNameConflict
		case errors.Is(err, repositories.ErrPartnerOwnerInvalid):
			return nil, ErrSessionExpired
		default:
			return nil, fmt.Errorf("failed to create partner: %w", err)
		}
	}
	return partner, nil
}

func (s *partnerService) DeletePartner(ctx context.Context, userID, partnerID int) error {
	if err := s.partnerRepo.Delete(ctx, partnerID, userID); err != nil {
		if errors.Is(err, repositories.ErrPartnerNotFound) {
			return ErrPartnerNotFound
		}
		return fmt.Errorf("failed to delete partner %d: %w", partnerID, err)
	}
	return nil
}
