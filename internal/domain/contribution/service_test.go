package contribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/domain/campaign"
)

type fakeCampaignGetter struct {
	c *campaign.Campaign
}

func (f *fakeCampaignGetter) GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	if f.c == nil || f.c.ID != id {
		return nil, campaign.ErrCampaignNotFound
	}
	copyC := *f.c
	return &copyC, nil
}

func liveCampaign() *campaign.Campaign {
	return &campaign.Campaign{
		ID:        uuid.New(),
		CreatorID: uuid.New(),
		Title:     "Community garden",
		Status:    campaign.StatusActive,
		Deadline:  time.Now().Add(24 * time.Hour),
	}
}

func TestContributeRejectsInvalidAmount(t *testing.T) {
	svc := NewService(nil, nil, &fakeCampaignGetter{}, nil, nil)

	for _, amount := range []int64{0, -500} {
		_, err := svc.Contribute(context.Background(), uuid.New(), &ContributeRequest{
			CampaignID:    uuid.New(),
			Amount:        amount,
			PaymentMethod: "wallet",
		})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestContributeRejectsInactiveCampaign(t *testing.T) {
	for _, status := range []campaign.Status{campaign.StatusDraft, campaign.StatusPending, campaign.StatusFunded, campaign.StatusFailed} {
		c := liveCampaign()
		c.Status = status
		svc := NewService(nil, nil, &fakeCampaignGetter{c: c}, nil, nil)

		_, err := svc.Contribute(context.Background(), uuid.New(), &ContributeRequest{
			CampaignID:    c.ID,
			Amount:        1000,
			PaymentMethod: "wallet",
		})
		if !errors.Is(err, ErrCampaignNotActive) {
			t.Fatalf("status %s: expected ErrCampaignNotActive, got %v", status, err)
		}
	}
}

func TestContributeRejectsExpiredCampaign(t *testing.T) {
	c := liveCampaign()
	c.Deadline = time.Now().Add(-time.Minute)
	svc := NewService(nil, nil, &fakeCampaignGetter{c: c}, nil, nil)

	_, err := svc.Contribute(context.Background(), uuid.New(), &ContributeRequest{
		CampaignID:    c.ID,
		Amount:        1000,
		PaymentMethod: "wallet",
	})
	if !errors.Is(err, ErrCampaignNotActive) {
		t.Fatalf("expected ErrCampaignNotActive, got %v", err)
	}
}

func TestContributeRejectsUnknownMethod(t *testing.T) {
	c := liveCampaign()
	svc := NewService(nil, nil, &fakeCampaignGetter{c: c}, nil, nil)

	_, err := svc.Contribute(context.Background(), uuid.New(), &ContributeRequest{
		CampaignID:    c.ID,
		Amount:        1000,
		PaymentMethod: "cash",
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for unknown method, got %v", err)
	}
}

func TestAnonymousContributionHidesBacker(t *testing.T) {
	c := Contribution{
		ID:         uuid.New(),
		Anonymous:  true,
		BackerName: "Jane Backer",
	}
	if resp := c.ToResponse(); resp.BackerName != "Anonymous" {
		t.Fatalf("expected backer hidden, got %q", resp.BackerName)
	}

	c.Anonymous = false
	if resp := c.ToResponse(); resp.BackerName != "Jane Backer" {
		t.Fatalf("expected backer shown, got %q", resp.BackerName)
	}
}
