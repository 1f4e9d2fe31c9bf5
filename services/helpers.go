package services

import (
	"fmt"
	"strings"

	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// populateUserDetailsFunc clears the password hash and resolves the avatar
// URL. A nil uploader leaves AvatarURL unset.
func populateUserDetailsFunc(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = ""
	if user.AvatarKey != nil && *user.AvatarKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*user.AvatarKey)
		if url != "" {
			user.AvatarURL = &url
		}
	}
}

func playerSummary(user *models.User, uploader storage.FileUploader) *models.PlayerSummary {
	if user == nil {
		return nil
	}
	populateUserDetailsFunc(user, uploader)
	return &models.PlayerSummary{
		ID:         user.ID,
		Name:       user.DisplayName(),
		SkillLevel: user.SkillLevel,
		AvatarURL:  user.AvatarURL,
	}
}

// GetExtensionFromContentType maps an image MIME type to a file extension.
// Only the formats the apps can render are accepted.
func GetExtensionFromContentType(contentType string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}
}
