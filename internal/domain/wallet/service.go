package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fundhive/fundhive-api/internal/pkg/khalti"
)

// Gateway is the payment provider used for wallet deposits.
type Gateway interface {
	Initiate(ctx context.Context, req khalti.InitiateRequest) (*khalti.PaymentResult, error)
	Verify(ctx context.Context, token string, amount int64) (*khalti.Verification, error)
}

type Service struct {
	repo    *Repository
	gateway Gateway
}

func NewService(repo *Repository, gateway Gateway) *Service {
	return &Service{repo: repo, gateway: gateway}
}

// CreateForUser opens a wallet for a new account.
func (s *Service) CreateForUser(ctx context.Context, userID uuid.UUID) error {
	return s.repo.CreateForUser(ctx, userID)
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

// Deposit charges the payment gateway and credits the wallet on success.
// Declined payments still leave a failed ledger row for the history view.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	result, err := s.gateway.Initiate(ctx, khalti.InitiateRequest{
		Amount:      amount,
		ProductID:   fmt.Sprintf("wallet_deposit_%s", userID),
		ProductName: "Wallet deposit",
	})
	if err != nil {
		if errors.Is(err, khalti.ErrPaymentDeclined) {
			if _, recErr := s.repo.RecordFailed(ctx, ApplyParams{
				UserID:        userID,
				Type:          TransactionTypeDeposit,
				Amount:        amount,
				PaymentMethod: "khalti",
				Description:   "Wallet deposit (payment declined)",
			}); recErr != nil {
				log.Error().Err(recErr).Str("user_id", userID.String()).Msg("Failed to record declined deposit")
			}
			return nil, ErrPaymentFailed
		}
		return nil, err
	}

	verification, err := s.gateway.Verify(ctx, result.Token, amount)
	if err != nil {
		return nil, ErrPaymentFailed
	}

	id, err := s.repo.Apply(ctx, ApplyParams{
		UserID:        userID,
		Type:          TransactionTypeDeposit,
		Status:        TransactionStatusCompleted,
		Amount:        amount,
		PaymentMethod: "khalti",
		Reference:     verification.IDX,
		Description:   "Wallet deposit",
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Str("reference", verification.IDX).
		Msg("Wallet deposit applied")

	if id == uuid.Nil {
		// Idempotent retry, nothing new to return.
		return nil, nil
	}
	return s.repo.GetTransaction(ctx, id)
}

// RequestWithdrawal queues a withdrawal for admin review. The balance is not
// checked or debited here; approval re-checks sufficiency under the wallet
// lock.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	rec, err := s.repo.RequestWithdrawal(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", rec.ID.String()).
		Int64("amount", amount).
		Msg("Withdrawal requested")

	return rec, nil
}

// ListTransactions returns the user's ledger history.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, txType TransactionType, status TransactionStatus, limit, offset int) ([]Transaction, int, error) {
	return s.repo.ListTransactions(ctx, TransactionFilter{
		UserID: uuid.NullUUID{UUID: userID, Valid: true},
		Type:   txType,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
}
