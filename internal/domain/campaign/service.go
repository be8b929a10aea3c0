package campaign

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fundhive/fundhive-api/internal/pkg/imaging"
	"github.com/fundhive/fundhive-api/internal/pkg/storage"
)

// BackerLister returns the distinct users who contributed to a campaign
type BackerLister interface {
	ListBackerIDs(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
}

// Notifier pushes campaign events to users
type Notifier interface {
	NotifyCampaignUpdate(ctx context.Context, userIDs []uuid.UUID, campaignID uuid.UUID, campaignTitle, updateTitle string)
}

// Service handles campaign business logic
type Service struct {
	repo      Repository
	backers   BackerLister
	notifier  Notifier
	storage   storage.Storage
	processor *imaging.Processor
}

// NewService creates campaign service
func NewService(repo Repository, backers BackerLister, notifier Notifier, store storage.Storage) *Service {
	return &Service{
		repo:      repo,
		backers:   backers,
		notifier:  notifier,
		storage:   store,
		processor: imaging.NewProcessor(imaging.CoverConfig()),
	}
}

// Create submits a new campaign for admin review
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateRequest) (*Campaign, error) {
	now := time.Now()
	start := now
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if !req.Deadline.After(now) {
		return nil, ErrDeadlineInPast
	}
	if !req.Deadline.After(start) {
		return nil, ErrDeadlineBeforeStart
	}

	c := &Campaign{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		GoalAmount:  req.GoalAmount,
		Status:      StatusPending,
		StartDate:   start,
		Deadline:    req.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	log.Info().
		Str("campaign_id", c.ID.String()).
		Str("creator_id", creatorID.String()).
		Int64("goal_amount", c.GoalAmount).
		Msg("Campaign submitted for review")

	return c, nil
}

// GetByID returns a single campaign
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCampaignNotFound
	}
	return c, nil
}

// List returns campaigns matching the filter
func (s *Service) List(ctx context.Context, filter *Filter, sortBy SortBy, pagination *Pagination) ([]*Campaign, int, error) {
	return s.repo.List(ctx, filter, sortBy, pagination)
}

// Stats returns platform-wide campaign aggregates
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// Update edits a campaign. Core fields are frozen once the campaign is
// active or holds money: the goal and deadline backers pledged against
// cannot move, not even after an admin sends the campaign back to draft.
func (s *Service) Update(ctx context.Context, userID, campaignID uuid.UUID, req *UpdateRequest) (*Campaign, error) {
	c, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if c.IsFinished() {
		return nil, ErrNotEditable
	}

	if (c.Status == StatusActive || c.CurrentAmount > 0) && (req.GoalAmount != nil || req.Deadline != nil) {
		return nil, ErrGoalImmutable
	}

	if req.Title != "" {
		c.Title = req.Title
	}
	if req.Description != "" {
		c.Description = req.Description
	}
	if req.Category != "" {
		c.Category = req.Category
	}
	if req.GoalAmount != nil {
		c.GoalAmount = *req.GoalAmount
	}
	if req.Deadline != nil {
		if !req.Deadline.After(time.Now()) {
			return nil, ErrDeadlineInPast
		}
		if !req.Deadline.After(c.StartDate) {
			return nil, ErrDeadlineBeforeStart
		}
		c.Deadline = *req.Deadline
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Submit moves a rejected draft back into the review queue
func (s *Service) Submit(ctx context.Context, userID, campaignID uuid.UUID) (*Campaign, error) {
	c, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, ErrNotCreator
	}

	moved, err := s.repo.UpdateStatusIf(ctx, campaignID, StatusDraft, StatusPending)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrInvalidTransition
	}

	c.Status = StatusPending
	return c, nil
}

// Delete removes a campaign. Refused once anyone has put money in.
func (s *Service) Delete(ctx context.Context, userID, campaignID uuid.UUID) error {
	c, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if c.CreatorID != userID {
		return ErrNotCreator
	}

	if err := s.repo.Delete(ctx, campaignID); err != nil {
		return err
	}

	// Cover images are orphaned once the row is gone.
	for _, url := range []string{c.CoverImageURL.String, c.CoverThumbURL.String} {
		if url == "" {
			continue
		}
		if key, ok := s.storage.KeyFromURL(url); ok {
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to delete campaign cover")
			}
		}
	}

	log.Info().Str("campaign_id", campaignID.String()).Msg("Campaign deleted")
	return nil
}

// UploadCover processes and stores a campaign cover image
func (s *Service) UploadCover(ctx context.Context, userID, campaignID uuid.UUID, file io.Reader, filename string) (*CoverResponse, error) {
	if !imaging.ValidateType(filename) {
		return nil, ErrInvalidImage
	}

	c, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if c.IsFinished() {
		return nil, ErrNotEditable
	}

	processed, err := s.processor.Process(file)
	if err != nil {
		return nil, ErrInvalidImage
	}

	coverKey, thumbKey := imaging.CoverPaths(campaignID, filename)

	if err := s.storage.Put(ctx, coverKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, err
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		return nil, err
	}

	coverURL := s.storage.GetURL(coverKey)
	thumbURL := s.storage.GetURL(thumbKey)

	if err := s.repo.UpdateCover(ctx, campaignID, coverURL, thumbURL); err != nil {
		return nil, err
	}

	return &CoverResponse{CoverImageURL: coverURL, CoverThumbURL: thumbURL}, nil
}

// PostUpdate publishes a progress post and notifies every backer
func (s *Service) PostUpdate(ctx context.Context, userID, campaignID uuid.UUID, req *PostUpdateRequest) (*Update, error) {
	c, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if c.Status != StatusActive && c.Status != StatusFunded {
		return nil, ErrNotActive
	}

	u := &Update{
		ID:         uuid.New(),
		CampaignID: campaignID,
		Title:      req.Title,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateUpdate(ctx, u); err != nil {
		return nil, err
	}

	backerIDs, err := s.backers.ListBackerIDs(ctx, campaignID)
	if err != nil {
		log.Error().Err(err).Str("campaign_id", campaignID.String()).Msg("Failed to list backers for update notification")
	} else if len(backerIDs) > 0 {
		s.notifier.NotifyCampaignUpdate(ctx, backerIDs, campaignID, c.Title, u.Title)
	}

	return u, nil
}

// ListUpdates returns a campaign's progress posts
func (s *Service) ListUpdates(ctx context.Context, campaignID uuid.UUID) ([]*Update, error) {
	if _, err := s.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.repo.ListUpdates(ctx, campaignID)
}
