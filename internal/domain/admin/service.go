package admin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fundhive/fundhive-api/internal/domain/campaign"
	"github.com/fundhive/fundhive-api/internal/domain/user"
	"github.com/fundhive/fundhive-api/internal/domain/wallet"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = time.Minute
)

// Notifier delivers review outcomes to the affected users.
type Notifier interface {
	NotifyCampaignReviewed(ctx context.Context, creatorID, campaignID uuid.UUID, title string, approved bool, note string)
	NotifyWithdrawalReviewed(ctx context.Context, userID, transactionID uuid.UUID, amount int64, approved bool, note string)
}

// Service handles admin review workflows and the dashboard
type Service struct {
	repo      *Repository
	campaigns campaign.Repository
	wallets   *wallet.Repository
	users     user.Repository
	notifier  Notifier
	redis     *redis.Client
}

// NewService creates admin service
func NewService(repo *Repository, campaigns campaign.Repository, wallets *wallet.Repository, users user.Repository, notifier Notifier, redisClient *redis.Client) *Service {
	return &Service{
		repo:      repo,
		campaigns: campaigns,
		wallets:   wallets,
		users:     users,
		notifier:  notifier,
		redis:     redisClient,
	}
}

// ReviewCampaign applies an admin decision to a campaign. Approve moves
// pending to active, reject moves pending back to draft, request_changes
// pulls an active campaign back to draft. The note, when present, is stored
// as an audit row and included in the creator's notification.
func (s *Service) ReviewCampaign(ctx context.Context, adminID, campaignID uuid.UUID, action Action, note string) (*campaign.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, campaign.ErrCampaignNotFound
	}

	var from, to campaign.Status
	switch action {
	case ActionApprove:
		from, to = campaign.StatusPending, campaign.StatusActive
	case ActionReject:
		from, to = campaign.StatusPending, campaign.StatusDraft
	case ActionRequestChanges:
		from, to = campaign.StatusActive, campaign.StatusDraft
	default:
		return nil, ErrInvalidAction
	}

	moved, err := s.campaigns.UpdateStatusIf(ctx, campaignID, from, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrNotReviewable
	}
	c.Status = to

	if note != "" {
		if err := s.repo.CreateCampaignNote(ctx, &CampaignNote{
			ID:         uuid.New(),
			CampaignID: campaignID,
			AdminID:    adminID,
			Action:     string(action),
			Note:       note,
		}); err != nil {
			log.Error().Err(err).Str("campaign_id", campaignID.String()).Msg("Failed to store campaign review note")
		}
	}

	log.Info().
		Str("admin_id", adminID.String()).
		Str("campaign_id", campaignID.String()).
		Str("action", string(action)).
		Msg("Campaign reviewed")

	if s.notifier != nil {
		s.notifier.NotifyCampaignReviewed(ctx, c.CreatorID, c.ID, c.Title, action == ActionApprove, note)
	}

	s.invalidateStats(ctx)

	return c, nil
}

// ReviewTransaction applies an admin decision to a pending withdrawal.
// Approval re-checks the wallet balance before debiting; campaign totals are
// never touched from this path.
func (s *Service) ReviewTransaction(ctx context.Context, adminID, txID uuid.UUID, action Action, note string) (*wallet.Transaction, error) {
	var approve bool
	switch action {
	case ActionApprove:
		approve = true
	case ActionReject:
		approve = false
	default:
		return nil, ErrInvalidAction
	}

	rec, err := s.wallets.ReviewWithdrawal(ctx, txID, approve)
	if err != nil {
		return nil, err
	}

	if note != "" {
		if err := s.repo.CreateTransactionNote(ctx, &TransactionNote{
			ID:            uuid.New(),
			TransactionID: txID,
			AdminID:       adminID,
			Action:        string(action),
			Note:          note,
		}); err != nil {
			log.Error().Err(err).Str("transaction_id", txID.String()).Msg("Failed to store transaction review note")
		}
	}

	log.Info().
		Str("admin_id", adminID.String()).
		Str("transaction_id", txID.String()).
		Str("action", string(action)).
		Msg("Withdrawal reviewed")

	if s.notifier != nil {
		s.notifier.NotifyWithdrawalReviewed(ctx, rec.UserID, rec.ID, rec.Amount, approve, note)
	}

	s.invalidateStats(ctx)

	return rec, nil
}

// ListPendingCampaigns returns the review queue, oldest submission first
func (s *Service) ListPendingCampaigns(ctx context.Context, page, limit int) ([]*campaign.Campaign, int, error) {
	status := campaign.StatusPending
	return s.campaigns.List(ctx,
		&campaign.Filter{Status: &status},
		campaign.SortByOldest,
		&campaign.Pagination{Page: page, Limit: limit},
	)
}

// ListCampaignNotes returns the audit trail for a campaign
func (s *Service) ListCampaignNotes(ctx context.Context, campaignID uuid.UUID) ([]CampaignNote, error) {
	return s.repo.ListCampaignNotes(ctx, campaignID)
}

// ListTransactionNotes returns the audit trail for a transaction
func (s *Service) ListTransactionNotes(ctx context.Context, transactionID uuid.UUID) ([]TransactionNote, error) {
	return s.repo.ListTransactionNotes(ctx, transactionID)
}

// ListTransactions returns ledger rows across all users
func (s *Service) ListTransactions(ctx context.Context, filter wallet.TransactionFilter) ([]wallet.Transaction, int, error) {
	return s.wallets.ListTransactions(ctx, filter)
}

// ListUsers returns registered profiles
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]user.Profile, int, error) {
	return s.users.List(ctx, limit, offset)
}

// SetAdmin toggles the admin flag on a profile. An admin cannot remove
// their own access.
func (s *Service) SetAdmin(ctx context.Context, actorID, targetID uuid.UUID, isAdmin bool) error {
	if actorID == targetID && !isAdmin {
		return ErrCannotDemote
	}

	if err := s.users.SetAdmin(ctx, targetID, isAdmin); err != nil {
		return err
	}

	log.Info().
		Str("admin_id", actorID.String()).
		Str("user_id", targetID.String()).
		Bool("is_admin", isAdmin).
		Msg("Admin flag changed")

	return nil
}

// Stats returns platform-wide aggregates, cached briefly in Redis.
func (s *Service) Stats(ctx context.Context) (*PlatformStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var stats PlatformStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	campaignStats, err := s.campaigns.Stats(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	ledger, err := s.repo.TransactionAggregates(ctx)
	if err != nil {
		return nil, err
	}

	stats := &PlatformStats{
		TotalUsers:              totalUsers,
		TotalCampaigns:          campaignStats.TotalCampaigns,
		ActiveCampaigns:         campaignStats.ActiveCampaigns,
		PendingCampaigns:        campaignStats.PendingCampaigns,
		FundedCampaigns:         campaignStats.FundedCampaigns,
		FailedCampaigns:         campaignStats.FailedCampaigns,
		TotalRaised:             campaignStats.TotalRaised,
		TotalTransactions:       ledger.TotalTransactions,
		PendingWithdrawals:      ledger.PendingWithdrawals,
		PendingWithdrawalAmount: ledger.PendingWithdrawalAmount,
	}
	if finished := campaignStats.FundedCampaigns + campaignStats.FailedCampaigns; finished > 0 {
		stats.SuccessRate = float64(campaignStats.FundedCampaigns) / float64(finished)
	}

	if s.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsCacheKey, data, statsCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to cache admin stats")
			}
		}
	}

	return stats, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate admin stats cache")
	}
}
