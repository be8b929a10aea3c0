package wallet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/domain/wallet"
)

func TestDepositRejectsInvalidAmount(t *testing.T) {
	svc := wallet.NewService(nil, nil)

	for _, amount := range []int64{0, -100} {
		_, err := svc.Deposit(context.Background(), uuid.New(), amount)
		if !errors.Is(err, wallet.ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestRequestWithdrawalRejectsInvalidAmount(t *testing.T) {
	svc := wallet.NewService(nil, nil)

	for _, amount := range []int64{0, -100} {
		_, err := svc.RequestWithdrawal(context.Background(), uuid.New(), amount)
		if !errors.Is(err, wallet.ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}
