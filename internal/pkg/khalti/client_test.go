package khalti

import (
	"context"
	"errors"
	"testing"
	"time"
)

func simClient(successRate float64) *Client {
	return NewClient(Config{
		Simulate:      true,
		SuccessRate:   successRate,
		SimulateDelay: time.Millisecond,
	})
}

func TestSimulatedPaymentFlow(t *testing.T) {
	client := simClient(1.0)

	result, err := client.Initiate(context.Background(), InitiateRequest{
		Amount:      50000,
		ProductID:   "campaign_abc",
		ProductName: "Test campaign",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Amount != 50000 {
		t.Errorf("expected echoed amount 50000, got %d", result.Amount)
	}
	if result.Token == "" || result.IDX == "" {
		t.Errorf("expected token and idx, got %q / %q", result.Token, result.IDX)
	}

	verification, err := client.Verify(context.Background(), result.Token, result.Amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verification.Amount != 50000 {
		t.Errorf("expected verified amount 50000, got %d", verification.Amount)
	}
	if verification.IDX == "" {
		t.Error("expected verification idx")
	}
}

func TestSimulatedRefsAreUnique(t *testing.T) {
	client := simClient(1.0)
	req := InitiateRequest{Amount: 1000, ProductID: "campaign_abc"}

	a, err := client.Initiate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := client.Initiate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Back-to-back payments must never share a reference, the ledger
	// would swallow the second one as a duplicate.
	if a.IDX == b.IDX {
		t.Fatalf("expected distinct idx values, both %q", a.IDX)
	}
	if a.Token == b.Token {
		t.Fatalf("expected distinct tokens, both %q", a.Token)
	}
}

func TestSimulatedDecline(t *testing.T) {
	// Negative rate makes every simulated payment fail.
	client := simClient(-1)

	_, err := client.Initiate(context.Background(), InitiateRequest{
		Amount:    1000,
		ProductID: "campaign_abc",
	})
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	client := simClient(1.0)

	if _, err := client.Verify(context.Background(), "forged_token", 1000); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
}

func TestVerifyRejectsBadInput(t *testing.T) {
	client := simClient(1.0)

	if _, err := client.Verify(context.Background(), "", 1000); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed for empty token, got %v", err)
	}
	if _, err := client.Verify(context.Background(), "sim_token_x", 0); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed for zero amount, got %v", err)
	}
}

func TestInitiateValidation(t *testing.T) {
	client := simClient(1.0)

	if _, err := client.Initiate(context.Background(), InitiateRequest{Amount: 0, ProductID: "x"}); err == nil {
		t.Error("expected error for zero amount")
	}
	if _, err := client.Initiate(context.Background(), InitiateRequest{Amount: 100, ProductID: "  "}); err == nil {
		t.Error("expected error for blank product id")
	}
}

func TestInitiateRespectsContext(t *testing.T) {
	client := NewClient(Config{
		Simulate:      true,
		SuccessRate:   1.0,
		SimulateDelay: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Initiate(ctx, InitiateRequest{Amount: 100, ProductID: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
