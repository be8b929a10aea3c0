package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Filter represents campaign search filters
type Filter struct {
	Query     *string
	Category  *string
	Status    *Status
	CreatorID *uuid.UUID
}

// SortBy represents sort options
type SortBy string

const (
	SortByNewest     SortBy = "newest"
	SortByOldest     SortBy = "oldest"
	SortByEndingSoon SortBy = "ending_soon"
	SortByMostFunded SortBy = "most_funded"
	SortByPopular    SortBy = "popular"
)

// Pagination for listing
type Pagination struct {
	Page  int
	Limit int
}

// Stats holds platform-wide campaign aggregates
type Stats struct {
	TotalCampaigns   int   `db:"total_campaigns"`
	ActiveCampaigns  int   `db:"active_campaigns"`
	PendingCampaigns int   `db:"pending_campaigns"`
	FundedCampaigns  int   `db:"funded_campaigns"`
	FailedCampaigns  int   `db:"failed_campaigns"`
	TotalRaised      int64 `db:"total_raised"`
}

// Repository defines campaign data access interface
type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	UpdateCover(ctx context.Context, id uuid.UUID, coverURL, thumbURL string) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *Filter, sortBy SortBy, pagination *Pagination) ([]*Campaign, int, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]*Campaign, error)
	Stats(ctx context.Context) (*Stats, error)

	CreateUpdate(ctx context.Context, u *Update) error
	ListUpdates(ctx context.Context, campaignID uuid.UUID) ([]*Update, error)
}

type repository struct {
	db *sqlx.DB
}

const campaignSelectColumns = `
	c.id, c.creator_id, c.title, c.description, c.category,
	c.goal_amount, c.current_amount, c.backers_count, c.status,
	c.cover_image_url, c.cover_thumb_url, c.start_date, c.deadline,
	c.created_at, c.updated_at,
	COALESCE(p.full_name, '') AS creator_name
`

// NewRepository creates new campaign repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Campaign) error {
	query := `
		INSERT INTO campaigns (
			id, creator_id, title, description, category,
			goal_amount, current_amount, backers_count, status,
			cover_image_url, cover_thumb_url, start_date, deadline
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.CreatorID, c.Title, c.Description, c.Category,
		c.GoalAmount, c.CurrentAmount, c.BackersCount, c.Status,
		c.CoverImageURL, c.CoverThumbURL, c.StartDate, c.Deadline,
	)
	if err != nil {
		evt := log.Error().
			Str("query", "campaigns.create").
			Str("campaign_id", c.ID.String()).
			Str("creator_id", c.CreatorID.String()).
			Err(err)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			evt = evt.
				Str("pg_code", string(pqErr.Code)).
				Str("pg_constraint", pqErr.Constraint)
		}

		evt.Msg("campaign insert failed")
		return mapDBError(err)
	}

	return nil
}

func mapDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23514":
		return fmt.Errorf("%w: %w", ErrCampaignConstraint, err)
	case "23503":
		return fmt.Errorf("%w: %w", ErrInvalidCreatorRef, err)
	default:
		return err
	}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	query := `
		SELECT ` + campaignSelectColumns + `
		FROM campaigns c
		LEFT JOIN profiles p ON p.id = c.creator_id
		WHERE c.id = $1
	`

	var c Campaign
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Campaign) error {
	query := `
		UPDATE campaigns SET
			title = $2, description = $3, category = $4,
			goal_amount = $5, deadline = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Description, c.Category,
		c.GoalAmount, c.Deadline,
	)
	if err != nil {
		return mapDBError(err)
	}

	return nil
}

func (r *repository) UpdateCover(ctx context.Context, id uuid.UUID, coverURL, thumbURL string) error {
	query := `UPDATE campaigns SET cover_image_url = $2, cover_thumb_url = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, coverURL, thumbURL)
	return err
}

// UpdateStatusIf performs a guarded status move. Returns false when the row
// was not in the expected state, which makes concurrent reviews and the
// finalizer safe against each other.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a campaign that has no money behind it.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM campaigns WHERE id = $1 AND current_amount = 0`,
		id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Row exists with money on it, or is already gone.
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, id); err != nil {
			return err
		}
		if exists {
			return ErrHasContributions
		}
		return ErrCampaignNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter *Filter, sortBy SortBy, pagination *Pagination) ([]*Campaign, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	// Default to active campaigns for public browsing. Creator-scoped
	// listings show every state.
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	} else if filter.CreatorID == nil {
		conditions = append(conditions, "c.status = 'active'")
	}

	if filter.Category != nil && *filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.CreatorID != nil {
		conditions = append(conditions, fmt.Sprintf("c.creator_id = $%d", argIndex))
		args = append(args, *filter.CreatorID)
		argIndex++
	}

	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(c.title ILIKE $%d OR c.description ILIKE $%d)",
			argIndex, argIndex,
		))
		args = append(args, "%"+*filter.Query+"%")
		argIndex++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM campaigns c %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	var orderBy string
	switch sortBy {
	case SortByOldest:
		orderBy = "ORDER BY c.created_at ASC"
	case SortByEndingSoon:
		orderBy = "ORDER BY c.deadline ASC"
	case SortByMostFunded:
		orderBy = "ORDER BY c.current_amount DESC"
	case SortByPopular:
		orderBy = "ORDER BY c.backers_count DESC, c.current_amount DESC"
	default:
		orderBy = "ORDER BY c.created_at DESC"
	}

	offset := (pagination.Page - 1) * pagination.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM campaigns c
		LEFT JOIN profiles p ON p.id = c.creator_id
		%s %s
		LIMIT $%d OFFSET $%d
	`, campaignSelectColumns, where, orderBy, argIndex, argIndex+1)
	args = append(args, pagination.Limit, offset)

	var campaigns []*Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ListExpiredActive returns active campaigns whose deadline has passed.
func (r *repository) ListExpiredActive(ctx context.Context, now time.Time) ([]*Campaign, error) {
	query := `
		SELECT ` + campaignSelectColumns + `
		FROM campaigns c
		LEFT JOIN profiles p ON p.id = c.creator_id
		WHERE c.status = 'active' AND c.deadline <= $1
		ORDER BY c.deadline ASC
	`

	var campaigns []*Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query, now); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total_campaigns,
			COUNT(*) FILTER (WHERE status = 'active') AS active_campaigns,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_campaigns,
			COUNT(*) FILTER (WHERE status = 'funded') AS funded_campaigns,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed_campaigns,
			COALESCE(SUM(current_amount), 0) AS total_raised
		FROM campaigns
	`

	var stats Stats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *repository) CreateUpdate(ctx context.Context, u *Update) error {
	query := `
		INSERT INTO campaign_updates (id, campaign_id, title, content)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.CampaignID, u.Title, u.Content)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *repository) ListUpdates(ctx context.Context, campaignID uuid.UUID) ([]*Update, error) {
	query := `
		SELECT id, campaign_id, title, content, created_at
		FROM campaign_updates
		WHERE campaign_id = $1
		ORDER BY created_at DESC
	`

	var updates []*Update
	if err := r.db.SelectContext(ctx, &updates, query, campaignID); err != nil {
		return nil, err
	}
	return updates, nil
}
