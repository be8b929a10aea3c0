package contribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fundhive/fundhive-api/internal/domain/campaign"
	"github.com/fundhive/fundhive-api/internal/domain/wallet"
	"github.com/fundhive/fundhive-api/internal/pkg/khalti"
)

// Gateway is the payment provider for card-style contributions
type Gateway interface {
	Initiate(ctx context.Context, req khalti.InitiateRequest) (*khalti.PaymentResult, error)
	Verify(ctx context.Context, token string, amount int64) (*khalti.Verification, error)
}

// CampaignGetter looks up campaigns for pre-charge checks
type CampaignGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error)
}

// Notifier tells creators about new pledges
type Notifier interface {
	NotifyContribution(ctx context.Context, creatorID, campaignID uuid.UUID, campaignTitle string, amount int64)
}

// Service handles contribution business logic
type Service struct {
	repo       *Repository
	walletRepo *wallet.Repository
	campaigns  CampaignGetter
	gateway    Gateway
	notifier   Notifier
}

// NewService creates contribution service
func NewService(repo *Repository, walletRepo *wallet.Repository, campaigns CampaignGetter, gateway Gateway, notifier Notifier) *Service {
	return &Service{
		repo:       repo,
		walletRepo: walletRepo,
		campaigns:  campaigns,
		gateway:    gateway,
		notifier:   notifier,
	}
}

// Contribute collects the payment and records the pledge. Gateway payments
// are charged before recording; the record step is idempotent by payment
// reference, so a retried request cannot count twice.
func (s *Service) Contribute(ctx context.Context, userID uuid.UUID, req *ContributeRequest) (*Contribution, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	c, err := s.campaigns.GetByID(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != campaign.StatusActive || !c.Deadline.After(time.Now()) {
		return nil, ErrCampaignNotActive
	}

	method := PaymentMethod(req.PaymentMethod)
	var reference string

	switch method {
	case PaymentMethodKhalti:
		reference, err = s.chargeGateway(ctx, userID, c, req.Amount)
		if err != nil {
			return nil, err
		}
	case PaymentMethodWallet:
		reference = "cw_" + uuid.New().String()
	default:
		return nil, ErrInvalidAmount
	}

	rec, err := s.repo.Record(ctx, RecordParams{
		CampaignID:    req.CampaignID,
		UserID:        userID,
		Amount:        req.Amount,
		PaymentMethod: method,
		Reference:     reference,
		Anonymous:     req.Anonymous,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateReference) && rec != nil {
			// Retry of an already-recorded payment.
			return rec, nil
		}
		return nil, err
	}

	log.Info().
		Str("contribution_id", rec.ID.String()).
		Str("campaign_id", req.CampaignID.String()).
		Str("user_id", userID.String()).
		Int64("amount", req.Amount).
		Str("method", string(method)).
		Msg("Contribution recorded")

	if s.notifier != nil {
		s.notifier.NotifyContribution(ctx, c.CreatorID, c.ID, c.Title, req.Amount)
	}

	return rec, nil
}

func (s *Service) chargeGateway(ctx context.Context, userID uuid.UUID, c *campaign.Campaign, amount int64) (string, error) {
	result, err := s.gateway.Initiate(ctx, khalti.InitiateRequest{
		Amount:      amount,
		ProductID:   fmt.Sprintf("campaign_%s", c.ID),
		ProductName: c.Title,
	})
	if err != nil {
		if errors.Is(err, khalti.ErrPaymentDeclined) {
			if _, recErr := s.walletRepo.RecordFailed(ctx, wallet.ApplyParams{
				UserID:        userID,
				CampaignID:    uuid.NullUUID{UUID: c.ID, Valid: true},
				Type:          wallet.TransactionTypeContribution,
				Amount:        amount,
				PaymentMethod: string(PaymentMethodKhalti),
				Description:   "Campaign contribution (payment declined)",
			}); recErr != nil {
				log.Error().Err(recErr).Str("user_id", userID.String()).Msg("Failed to record declined contribution")
			}
			return "", ErrPaymentFailed
		}
		return "", err
	}

	verification, err := s.gateway.Verify(ctx, result.Token, amount)
	if err != nil {
		return "", ErrPaymentFailed
	}

	return verification.IDX, nil
}

// ListByCampaign returns a campaign's contributions
func (s *Service) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]Contribution, int, error) {
	return s.repo.ListByCampaign(ctx, campaignID, limit, offset)
}

// ListMine returns the user's own contributions
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Contribution, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// RefundCampaign returns all funds for a failed campaign. Satisfies the
// finalizer's Refunder dependency.
func (s *Service) RefundCampaign(ctx context.Context, campaignID uuid.UUID) (int, error) {
	return s.repo.RefundCampaign(ctx, campaignID)
}

// ListUnrefundedCampaignIDs reports failed campaigns still owing refunds.
// Satisfies the finalizer's Refunder dependency.
func (s *Service) ListUnrefundedCampaignIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListUnrefundedCampaignIDs(ctx)
}
