package user

import (
	"bytes"
	"context"
	"database/sql"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fundhive/fundhive-api/internal/pkg/imaging"
	"github.com/fundhive/fundhive-api/internal/pkg/storage"
)

// Service handles profile business logic
type Service struct {
	repo      Repository
	storage   storage.Storage
	processor *imaging.Processor
}

// NewService creates profile service
func NewService(repo Repository, store storage.Storage) *Service {
	return &Service{
		repo:      repo,
		storage:   store,
		processor: imaging.NewProcessor(imaging.AvatarConfig()),
	}
}

// GetProfile returns the profile for the given user
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}
	return profile, nil
}

// UpdateProfile updates the editable profile fields
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		profile.FullName = req.FullName
	}
	profile.Bio = sql.NullString{String: req.Bio, Valid: req.Bio != ""}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// UploadAvatar processes and stores a new avatar, replacing the old one.
func (s *Service) UploadAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, filename string) (*AvatarResponse, error) {
	if !imaging.ValidateType(filename) {
		return nil, ErrInvalidImage
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(file)
	if err != nil {
		return nil, ErrInvalidImage
	}

	originalKey, thumbKey := imaging.AvatarPaths(userID, filename)

	if err := s.storage.Put(ctx, originalKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, err
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		return nil, err
	}

	avatarURL := s.storage.GetURL(originalKey)
	thumbURL := s.storage.GetURL(thumbKey)

	if err := s.repo.UpdateAvatar(ctx, userID, avatarURL, thumbURL); err != nil {
		return nil, err
	}

	// Old avatar objects are orphaned on replacement; best-effort cleanup.
	if old := profile.AvatarURL.String; old != "" && old != avatarURL {
		if key, ok := s.storage.KeyFromURL(old); ok {
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to delete old avatar")
			}
		}
	}
	if old := profile.AvatarThumbURL.String; old != "" && old != thumbURL {
		if key, ok := s.storage.KeyFromURL(old); ok {
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to delete old avatar thumbnail")
			}
		}
	}

	return &AvatarResponse{AvatarURL: avatarURL, AvatarThumbURL: thumbURL}, nil
}

// IsAdmin reports whether the user currently holds the admin flag.
func (s *Service) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}
