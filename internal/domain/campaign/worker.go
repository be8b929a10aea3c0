package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Refunder returns contributed funds when a campaign fails
type Refunder interface {
	RefundCampaign(ctx context.Context, campaignID uuid.UUID) (int, error)
	ListUnrefundedCampaignIDs(ctx context.Context) ([]uuid.UUID, error)
}

// FinalizeNotifier tells creators how their campaign ended
type FinalizeNotifier interface {
	NotifyCampaignFinalized(ctx context.Context, creatorID, campaignID uuid.UUID, title string, funded bool)
}

// Worker finalizes campaigns whose deadline has passed: funded when the
// goal was reached, failed (with refunds) otherwise.
type Worker struct {
	repo     Repository
	refunder Refunder
	notifier FinalizeNotifier
	interval time.Duration
	stopCh   chan struct{}
}

// NewWorker creates a campaign finalizer worker
func NewWorker(repo Repository, refunder Refunder, notifier FinalizeNotifier, interval time.Duration) *Worker {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &Worker{
		repo:     repo,
		refunder: refunder,
		notifier: notifier,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background worker
func (w *Worker) Start() {
	log.Info().Dur("interval", w.interval).Msg("Starting campaign finalizer...")
	go w.loop()
}

// Stop gracefully stops the background worker
func (w *Worker) Stop() {
	log.Info().Msg("Stopping campaign finalizer...")
	close(w.stopCh)
}

func (w *Worker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	w.FinalizeExpired()

	for {
		select {
		case <-ticker.C:
			w.FinalizeExpired()
		case <-w.stopCh:
			return
		}
	}
}

// FinalizeExpired processes every active campaign past its deadline.
// Exported so it can run on demand.
func (w *Worker) FinalizeExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	campaigns, err := w.repo.ListExpiredActive(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list expired campaigns")
		return
	}

	for _, c := range campaigns {
		w.finalize(ctx, c)
	}

	// A campaign that moved to failed drops out of ListExpiredActive, so
	// refunds stranded by an earlier error are only reachable through this
	// sweep.
	w.sweepRefunds(ctx)
}

func (w *Worker) sweepRefunds(ctx context.Context) {
	ids, err := w.refunder.ListUnrefundedCampaignIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list campaigns awaiting refunds")
		return
	}

	for _, id := range ids {
		refunded, err := w.refunder.RefundCampaign(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("campaign_id", id.String()).Msg("Failed to refund contributions")
			continue
		}
		if refunded > 0 {
			log.Info().Str("campaign_id", id.String()).Int("count", refunded).Msg("Contributions refunded")
		}
	}
}

func (w *Worker) finalize(ctx context.Context, c *Campaign) {
	funded := c.CurrentAmount >= c.GoalAmount
	target := StatusFailed
	if funded {
		target = StatusFunded
	}

	// Guarded move: another worker run may have finalized it already.
	moved, err := w.repo.UpdateStatusIf(ctx, c.ID, StatusActive, target)
	if err != nil {
		log.Error().Err(err).Str("campaign_id", c.ID.String()).Msg("Failed to finalize campaign")
		return
	}
	if !moved {
		return
	}

	log.Info().
		Str("campaign_id", c.ID.String()).
		Str("status", string(target)).
		Int64("raised", c.CurrentAmount).
		Int64("goal", c.GoalAmount).
		Msg("Campaign finalized")

	if !funded {
		refunded, err := w.refunder.RefundCampaign(ctx, c.ID)
		if err != nil {
			// Refunds are idempotent by reference; the sweep retries them.
			log.Error().Err(err).Str("campaign_id", c.ID.String()).Msg("Failed to refund contributions")
		} else if refunded > 0 {
			log.Info().Str("campaign_id", c.ID.String()).Int("count", refunded).Msg("Contributions refunded")
		}
	}

	if w.notifier != nil {
		w.notifier.NotifyCampaignFinalized(ctx, c.CreatorID, c.ID, c.Title, funded)
	}
}
