package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NicoBaldowine/pickleplay/apperr"
	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/repositories"
	"github.com/NicoBaldowine/pickleplay/storage"
	"github.com/NicoBaldowine/pickleplay/wizard"
)

const avatarKeyPrefix = "avatars"

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	// UploadAvatar stores the image and points the profile at it. The upload
	// is abandoned after the configured timeout with ErrUploadTimeout.
	UploadAvatar(ctx context.Context, userID int, file io.Reader, contentType string) (*models.User, error)
}

type UpdateProfileInput struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	SkillLevel  *string `json:"skill_level"`
}

type userService struct {
	userRepo      repositories.UserRepository
	uploader      storage.FileUploader
	uploadTimeout time.Duration
	logger        *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader, uploadTimeout time.Duration, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo:      userRepo,
		uploader:      uploader,
		uploadTimeout: uploadTimeout,
		logger:        logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	populateUserDetailsFunc(user, s.uploader)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.FirstName = name
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.PhoneNumber != nil {
		phone := wizard.NormalizePhone(*input.PhoneNumber)
		if !wizard.ValidPhone(phone) {
			return nil, ErrInvalidPhone
		}
		user.PhoneNumber = trimmedPtr(&phone)
	}
	if input.SkillLevel != nil {
		if strings.TrimSpace(*input.SkillLevel) == "" {
			user.SkillLevel = nil
		} else {
			level, ok := models.ParseSkillLevel(*input.SkillLevel)
			if !ok {
				return nil, ErrInvalidSkillLevel
			}
			user.SkillLevel = &level
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	populateUserDetailsFunc(user, s.uploader)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, file io.Reader, contentType string) (*models.User, error) {
	if s.uploader == nil {
		return nil, storage.ErrNotConfigured
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	oldKey := user.AvatarKey

	key := fmt.Sprintf("%s/%d/%s%s", avatarKeyPrefix, userID, uuid.NewString(), ext)

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	res, err := s.uploader.Upload(uploadCtx, key, contentType, file)
	if err != nil {
		if errors.Is(uploadCtx.Err(), context.DeadlineExceeded) || apperr.Is(err, apperr.KindTimeout) {
			s.logger.WarnContext(ctx, "avatar upload timed out", slog.Int("user_id", userID), slog.Duration("timeout", s.uploadTimeout))
			return nil, ErrUploadTimeout
		}
		s.logger.ErrorContext(ctx, "avatar upload failed", slog.Int("user_id", userID), slog.Any("error", err))
		if apperr.KindOf(err) == apperr.KindExternal {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindExternal, "Failed to upload avatar", err)
	}

	newKey := res.Key
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &newKey); err != nil {
		// Do not leave an orphan behind when the profile cannot point at it.
		if delErr := s.uploader.Delete(context.WithoutCancel(ctx), newKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned avatar", slog.String("key", newKey), slog.Any("error", delErr))
		}
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != newKey {
		if err := s.uploader.Delete(context.WithoutCancel(ctx), *oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous avatar", slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	user.AvatarKey = &newKey
	populateUserDetailsFunc(user, s.uploader)
	return user, nil
}
