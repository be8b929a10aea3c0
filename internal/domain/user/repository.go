package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const sqlStateUniqueViolation = "23505"

// Repository defines profile data access interface
type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL, thumbURL string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	IsAdmin(ctx context.Context, id uuid.UUID) (bool, error)
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error
	List(ctx context.Context, limit, offset int) ([]Profile, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new profile repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (id, email, password_hash, full_name, bio, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Email,
		profile.PasswordHash,
		profile.FullName,
		profile.Bio,
		profile.IsAdmin,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateUniqueViolation {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("profile repository create: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT id, email, password_hash, full_name, bio, avatar_url, avatar_thumb_url, is_admin,
		       created_at, updated_at
		FROM profiles WHERE id = $1
	`
	var profile Profile
	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `
		SELECT id, email, password_hash, full_name, bio, avatar_url, avatar_thumb_url, is_admin,
		       created_at, updated_at
		FROM profiles WHERE email = $1
	`
	var profile Profile
	err := r.db.GetContext(ctx, &profile, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

func (r *repository) Update(ctx context.Context, profile *Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $2, bio = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Bio,
	)
	if err != nil {
		return fmt.Errorf("profile repository update: %w", err)
	}

	return nil
}

func (r *repository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL, thumbURL string) error {
	query := `UPDATE profiles SET avatar_url = $2, avatar_thumb_url = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, avatarURL, thumbURL)
	return err
}

func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE profiles SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, passwordHash)
	return err
}

// IsAdmin reads the admin flag directly so privileged routes never trust a
// stale token claim.
func (r *repository) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRowContext(ctx, `SELECT is_admin FROM profiles WHERE id = $1`, id).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return isAdmin, nil
}

func (r *repository) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET is_admin = $2, updated_at = NOW() WHERE id = $1`,
		id, isAdmin,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Profile, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, email, password_hash, full_name, bio, avatar_url, avatar_thumb_url, is_admin,
		       created_at, updated_at
		FROM profiles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	profiles := []Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query, limit, offset); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}
