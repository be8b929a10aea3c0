package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Profile represents a user account (matches profiles table)
type Profile struct {
	ID             uuid.UUID      `db:"id"`
	Email          string         `db:"email"`
	PasswordHash   string         `db:"password_hash"`
	FullName       string         `db:"full_name"`
	Bio            sql.NullString `db:"bio"`
	AvatarURL      sql.NullString `db:"avatar_url"`
	AvatarThumbURL sql.NullString `db:"avatar_thumb_url"`
	IsAdmin        bool           `db:"is_admin"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
