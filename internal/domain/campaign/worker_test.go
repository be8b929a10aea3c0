package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRefunder struct {
	pending []uuid.UUID
	calls   []uuid.UUID
	err     error
}

func (f *fakeRefunder) RefundCampaign(ctx context.Context, campaignID uuid.UUID) (int, error) {
	f.calls = append(f.calls, campaignID)
	if f.err != nil {
		return 0, f.err
	}
	kept := f.pending[:0]
	for _, id := range f.pending {
		if id != campaignID {
			kept = append(kept, id)
		}
	}
	f.pending = kept
	return 3, nil
}

func (f *fakeRefunder) ListUnrefundedCampaignIDs(ctx context.Context) ([]uuid.UUID, error) {
	return append([]uuid.UUID(nil), f.pending...), nil
}

type fakeFinalizeNotifier struct {
	calls  int
	funded bool
}

func (f *fakeFinalizeNotifier) NotifyCampaignFinalized(ctx context.Context, creatorID, campaignID uuid.UUID, title string, funded bool) {
	f.calls++
	f.funded = funded
}

func expiredCampaign(current, goal int64) *Campaign {
	return &Campaign{
		ID:            uuid.New(),
		CreatorID:     uuid.New(),
		Title:         "Expired campaign",
		GoalAmount:    goal,
		CurrentAmount: current,
		Status:        StatusActive,
		Deadline:      time.Now().Add(-time.Hour),
	}
}

func TestFinalizeFundedCampaign(t *testing.T) {
	c := expiredCampaign(500000, 500000)
	repo := newFakeRepo(c)
	refunder := &fakeRefunder{}
	notifier := &fakeFinalizeNotifier{}
	w := NewWorker(repo, refunder, notifier, time.Hour)

	w.FinalizeExpired()

	if repo.campaigns[c.ID].Status != StatusFunded {
		t.Fatalf("expected funded, got %s", repo.campaigns[c.ID].Status)
	}
	if len(refunder.calls) != 0 {
		t.Fatal("expected no refunds for a funded campaign")
	}
	if notifier.calls != 1 || !notifier.funded {
		t.Fatal("expected creator notified of funded outcome")
	}
}

func TestFinalizeFailedCampaignRefunds(t *testing.T) {
	c := expiredCampaign(120000, 500000)
	repo := newFakeRepo(c)
	refunder := &fakeRefunder{}
	notifier := &fakeFinalizeNotifier{}
	w := NewWorker(repo, refunder, notifier, time.Hour)

	w.FinalizeExpired()

	if repo.campaigns[c.ID].Status != StatusFailed {
		t.Fatalf("expected failed, got %s", repo.campaigns[c.ID].Status)
	}
	if len(refunder.calls) != 1 || refunder.calls[0] != c.ID {
		t.Fatal("expected refunds for the failed campaign")
	}
	if notifier.calls != 1 || notifier.funded {
		t.Fatal("expected creator notified of failed outcome")
	}
}

func TestFinalizeSkipsAlreadyMoved(t *testing.T) {
	c := expiredCampaign(0, 500000)
	repo := newFakeRepo(c)
	// Another instance won the guarded move.
	repo.statusIf = func(id uuid.UUID, from, to Status) (bool, error) { return false, nil }
	refunder := &fakeRefunder{}
	notifier := &fakeFinalizeNotifier{}
	w := NewWorker(repo, refunder, notifier, time.Hour)

	w.FinalizeExpired()

	if len(refunder.calls) != 0 {
		t.Fatal("expected no refunds when the move was lost")
	}
	if notifier.calls != 0 {
		t.Fatal("expected no notification when the move was lost")
	}
}

func TestFinalizeRefundErrorStillNotifies(t *testing.T) {
	c := expiredCampaign(0, 500000)
	repo := newFakeRepo(c)
	refunder := &fakeRefunder{err: errors.New("wallet locked")}
	notifier := &fakeFinalizeNotifier{}
	w := NewWorker(repo, refunder, notifier, time.Hour)

	w.FinalizeExpired()

	if repo.campaigns[c.ID].Status != StatusFailed {
		t.Fatalf("expected failed, got %s", repo.campaigns[c.ID].Status)
	}
	if notifier.calls != 1 {
		t.Fatal("expected creator notified even when refunds errored")
	}
}

func TestFinalizeRetriesStrandedRefunds(t *testing.T) {
	c := expiredCampaign(120000, 500000)
	repo := newFakeRepo(c)
	refunder := &fakeRefunder{err: errors.New("db down")}
	w := NewWorker(repo, refunder, &fakeFinalizeNotifier{}, time.Hour)

	w.FinalizeExpired()

	if repo.campaigns[c.ID].Status != StatusFailed {
		t.Fatalf("expected failed, got %s", repo.campaigns[c.ID].Status)
	}
	if len(refunder.calls) != 1 {
		t.Fatalf("expected 1 refund attempt, got %d", len(refunder.calls))
	}

	// The campaign no longer shows up as expired-active, but its backers
	// are still owed. The sweep on the next tick picks it up.
	refunder.err = nil
	refunder.pending = []uuid.UUID{c.ID}
	w.FinalizeExpired()

	if len(refunder.calls) != 2 {
		t.Fatalf("expected the refund retried, got %d attempts", len(refunder.calls))
	}
	if len(refunder.pending) != 0 {
		t.Fatal("expected the stranded refund completed on retry")
	}
}

func TestFinalizeLeavesUnexpiredAlone(t *testing.T) {
	c := expiredCampaign(0, 500000)
	c.Deadline = time.Now().Add(time.Hour)
	repo := newFakeRepo(c)
	w := NewWorker(repo, &fakeRefunder{}, &fakeFinalizeNotifier{}, time.Hour)

	w.FinalizeExpired()

	if repo.campaigns[c.ID].Status != StatusActive {
		t.Fatalf("expected still active, got %s", repo.campaigns[c.ID].Status)
	}
}
