package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles notification logic
type Service struct {
	repo      Repository
	publisher RealtimePublisher
}

// NewService creates notification service
func NewService(repo Repository, publisher RealtimePublisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Create persists a notification and pushes it to connected clients
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, data *NotificationData) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.push(ctx, n)

	return n, nil
}

func (s *Service) push(ctx context.Context, n *Notification) {
	if s.publisher == nil {
		return
	}
	unread, err := s.repo.CountUnreadByUser(ctx, n.UserID)
	if err != nil {
		unread = 0
	}
	if err := s.publisher.NotifyNew(ctx, n.UserID, ToResponse(n), unread); err != nil {
		log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("Realtime notification push failed")
	}
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks single notification as read if it belongs to user
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID {
		return ErrNotificationNotFound
	}
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// CleanupOld deletes notifications older than the retention window
func (s *Service) CleanupOld(ctx context.Context, age time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, age)
}

// --- Helper methods for creating specific notifications ---

// NotifyContribution notifies creator that someone backed their campaign
func (s *Service) NotifyContribution(ctx context.Context, creatorID, campaignID uuid.UUID, campaignTitle string, amount int64) {
	s.Create(ctx, creatorID, TypeContribution,
		"New contribution",
		fmt.Sprintf("Your campaign \"%s\" received a %d contribution", campaignTitle, amount),
		&NotificationData{CampaignID: &campaignID, Amount: &amount},
	)
}

// NotifyCampaignUpdate notifies backers that the creator posted an update
func (s *Service) NotifyCampaignUpdate(ctx context.Context, userIDs []uuid.UUID, campaignID uuid.UUID, campaignTitle, updateTitle string) {
	for _, userID := range userIDs {
		s.Create(ctx, userID, TypeCampaignUpdate,
			"Campaign update: "+campaignTitle,
			updateTitle,
			&NotificationData{CampaignID: &campaignID},
		)
	}
}

// NotifyCampaignFinalized notifies creator about the outcome of their campaign
func (s *Service) NotifyCampaignFinalized(ctx context.Context, creatorID, campaignID uuid.UUID, title string, funded bool) {
	if funded {
		s.Create(ctx, creatorID, TypeSystem,
			"Campaign funded!",
			"Your campaign \""+title+"\" reached its goal",
			&NotificationData{CampaignID: &campaignID},
		)
		return
	}
	s.Create(ctx, creatorID, TypeSystem,
		"Campaign ended",
		"Your campaign \""+title+"\" did not reach its goal. Contributions are being refunded",
		&NotificationData{CampaignID: &campaignID},
	)
}

// NotifyCampaignReviewed notifies creator about the review decision
func (s *Service) NotifyCampaignReviewed(ctx context.Context, creatorID, campaignID uuid.UUID, title string, approved bool, note string) {
	if approved {
		body := "Your campaign \"" + title + "\" has been approved and is now live"
		if note != "" {
			body += ". Note: " + note
		}
		s.Create(ctx, creatorID, TypeSystem, "Campaign approved", body,
			&NotificationData{CampaignID: &campaignID})
		return
	}
	body := "Your campaign \"" + title + "\" was returned to draft"
	if note != "" {
		body += ". Reason: " + note
	}
	s.Create(ctx, creatorID, TypeSystem, "Campaign needs changes", body,
		&NotificationData{CampaignID: &campaignID})
}

// NotifyWithdrawalReviewed notifies user about their withdrawal request outcome
func (s *Service) NotifyWithdrawalReviewed(ctx context.Context, userID, transactionID uuid.UUID, amount int64, approved bool, note string) {
	if approved {
		s.Create(ctx, userID, TypeSystem,
			"Withdrawal approved",
			fmt.Sprintf("Your withdrawal of %d has been approved", amount),
			&NotificationData{TransactionID: &transactionID, Amount: &amount})
		return
	}
	body := fmt.Sprintf("Your withdrawal of %d was rejected", amount)
	if note != "" {
		body += ". Reason: " + note
	}
	s.Create(ctx, userID, TypeSystem, "Withdrawal rejected", body,
		&NotificationData{TransactionID: &transactionID, Amount: &amount})
}
