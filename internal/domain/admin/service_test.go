package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/domain/campaign"
	"github.com/fundhive/fundhive-api/internal/domain/user"
)

/* ==== fakes ==== */

type fakeCampaignRepo struct {
	campaigns map[uuid.UUID]*campaign.Campaign
}

func newFakeCampaignRepo(cs ...*campaign.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{campaigns: map[uuid.UUID]*campaign.Campaign{}}
	for _, c := range cs {
		r.campaigns[c.ID] = c
	}
	return r
}

func (r *fakeCampaignRepo) Create(ctx context.Context, c *campaign.Campaign) error {
	r.campaigns[c.ID] = c
	return nil
}
func (r *fakeCampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, nil
	}
	copyC := *c
	return &copyC, nil
}
func (r *fakeCampaignRepo) Update(ctx context.Context, c *campaign.Campaign) error { return nil }
func (r *fakeCampaignRepo) UpdateCover(ctx context.Context, id uuid.UUID, coverURL, thumbURL string) error {
	return nil
}
func (r *fakeCampaignRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to campaign.Status) (bool, error) {
	c, ok := r.campaigns[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}
func (r *fakeCampaignRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (r *fakeCampaignRepo) List(ctx context.Context, filter *campaign.Filter, sortBy campaign.SortBy, pagination *campaign.Pagination) ([]*campaign.Campaign, int, error) {
	var out []*campaign.Campaign
	for _, c := range r.campaigns {
		if filter != nil && filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}
func (r *fakeCampaignRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]*campaign.Campaign, error) {
	return nil, nil
}
func (r *fakeCampaignRepo) Stats(ctx context.Context) (*campaign.Stats, error) {
	return &campaign.Stats{}, nil
}
func (r *fakeCampaignRepo) CreateUpdate(ctx context.Context, u *campaign.Update) error { return nil }
func (r *fakeCampaignRepo) ListUpdates(ctx context.Context, campaignID uuid.UUID) ([]*campaign.Update, error) {
	return nil, nil
}

type fakeUserRepo struct {
	admins map[uuid.UUID]bool
}

func (f *fakeUserRepo) Create(ctx context.Context, profile *user.Profile) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.Profile, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.Profile, error) {
	return nil, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, profile *user.Profile) error { return nil }
func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL, thumbURL string) error {
	return nil
}
func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return nil
}
func (f *fakeUserRepo) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.admins[id], nil
}
func (f *fakeUserRepo) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	f.admins[id] = isAdmin
	return nil
}
func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]user.Profile, int, error) {
	return nil, 0, nil
}

type fakeNotifier struct {
	campaignCalls   int
	lastApproved    bool
	withdrawalCalls int
}

func (f *fakeNotifier) NotifyCampaignReviewed(ctx context.Context, creatorID, campaignID uuid.UUID, title string, approved bool, note string) {
	f.campaignCalls++
	f.lastApproved = approved
}
func (f *fakeNotifier) NotifyWithdrawalReviewed(ctx context.Context, userID, transactionID uuid.UUID, amount int64, approved bool, note string) {
	f.withdrawalCalls++
}

func pendingCampaign() *campaign.Campaign {
	return &campaign.Campaign{
		ID:        uuid.New(),
		CreatorID: uuid.New(),
		Title:     "Community garden",
		Status:    campaign.StatusPending,
	}
}

/* ==== campaign review ==== */

func TestReviewCampaignApprove(t *testing.T) {
	c := pendingCampaign()
	repo := newFakeCampaignRepo(c)
	notifier := &fakeNotifier{}
	svc := NewService(nil, repo, nil, nil, notifier, nil)

	out, err := svc.ReviewCampaign(context.Background(), uuid.New(), c.ID, ActionApprove, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Status != campaign.StatusActive {
		t.Fatalf("expected active, got %s", out.Status)
	}
	if repo.campaigns[c.ID].Status != campaign.StatusActive {
		t.Fatal("expected status persisted")
	}
	if notifier.campaignCalls != 1 || !notifier.lastApproved {
		t.Fatal("expected creator notified of approval")
	}
}

func TestReviewCampaignReject(t *testing.T) {
	c := pendingCampaign()
	repo := newFakeCampaignRepo(c)
	notifier := &fakeNotifier{}
	svc := NewService(nil, repo, nil, nil, notifier, nil)

	out, err := svc.ReviewCampaign(context.Background(), uuid.New(), c.ID, ActionReject, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Status != campaign.StatusDraft {
		t.Fatalf("expected draft, got %s", out.Status)
	}
	if notifier.lastApproved {
		t.Fatal("expected rejection notification")
	}
}

func TestReviewCampaignRequestChanges(t *testing.T) {
	c := pendingCampaign()
	c.Status = campaign.StatusActive
	repo := newFakeCampaignRepo(c)
	svc := NewService(nil, repo, nil, nil, &fakeNotifier{}, nil)

	out, err := svc.ReviewCampaign(context.Background(), uuid.New(), c.ID, ActionRequestChanges, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Status != campaign.StatusDraft {
		t.Fatalf("expected draft, got %s", out.Status)
	}
}

func TestReviewCampaignWrongState(t *testing.T) {
	c := pendingCampaign()
	c.Status = campaign.StatusDraft
	svc := NewService(nil, newFakeCampaignRepo(c), nil, nil, &fakeNotifier{}, nil)

	_, err := svc.ReviewCampaign(context.Background(), uuid.New(), c.ID, ActionApprove, "")
	if !errors.Is(err, ErrNotReviewable) {
		t.Fatalf("expected ErrNotReviewable, got %v", err)
	}
}

func TestReviewCampaignNotFound(t *testing.T) {
	svc := NewService(nil, newFakeCampaignRepo(), nil, nil, &fakeNotifier{}, nil)

	_, err := svc.ReviewCampaign(context.Background(), uuid.New(), uuid.New(), ActionApprove, "")
	if !errors.Is(err, campaign.ErrCampaignNotFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestReviewCampaignInvalidAction(t *testing.T) {
	c := pendingCampaign()
	svc := NewService(nil, newFakeCampaignRepo(c), nil, nil, &fakeNotifier{}, nil)

	_, err := svc.ReviewCampaign(context.Background(), uuid.New(), c.ID, Action("escalate"), "")
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

/* ==== review queue ==== */

func TestListPendingCampaignsFiltersByStatus(t *testing.T) {
	pending := pendingCampaign()
	active := pendingCampaign()
	active.Status = campaign.StatusActive
	svc := NewService(nil, newFakeCampaignRepo(pending, active), nil, nil, nil, nil)

	out, total, err := svc.ListPendingCampaigns(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 1 || len(out) != 1 || out[0].ID != pending.ID {
		t.Fatalf("expected only the pending campaign, got %d", total)
	}
}

/* ==== admin flag ==== */

func TestSetAdminSelfDemote(t *testing.T) {
	adminID := uuid.New()
	users := &fakeUserRepo{admins: map[uuid.UUID]bool{adminID: true}}
	svc := NewService(nil, nil, nil, users, nil, nil)

	err := svc.SetAdmin(context.Background(), adminID, adminID, false)
	if !errors.Is(err, ErrCannotDemote) {
		t.Fatalf("expected ErrCannotDemote, got %v", err)
	}
	if !users.admins[adminID] {
		t.Fatal("expected admin flag untouched")
	}
}

func TestSetAdminPromote(t *testing.T) {
	adminID := uuid.New()
	targetID := uuid.New()
	users := &fakeUserRepo{admins: map[uuid.UUID]bool{adminID: true}}
	svc := NewService(nil, nil, nil, users, nil, nil)

	if err := svc.SetAdmin(context.Background(), adminID, targetID, true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !users.admins[targetID] {
		t.Fatal("expected target promoted")
	}
}
