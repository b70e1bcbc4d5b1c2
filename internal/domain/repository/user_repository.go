package repository

import (
	"context"
	"time"

	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
)

// UserRepository is the ownership boundary for credential state. Password
// hashing happens inside the implementation: Create, UpdatePassword and
// ConsumeResetToken receive plaintext and persist only the hash. Plain reads
// never select the password column; callers that feed a password comparison
// must use the WithPassword variants.
type UserRepository interface {
	// Create persists a new user, hashing u.Password. Returns
	// ErrDuplicateEmail when the email is already registered.
	Create(ctx context.Context, u *entity.User) error

	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByIDWithPassword(ctx context.Context, id string) (*entity.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*entity.User, error)

	// UpdateProfile rewrites the mutable profile fields (full name, avatar).
	// It never touches email, role or the password column.
	UpdateProfile(ctx context.Context, u *entity.User) error

	// UpdatePassword hashes plaintext and rewrites the password column.
	UpdatePassword(ctx context.Context, id, plaintext string) error

	// SetResetToken stores the reset digest and its absolute expiry.
	SetResetToken(ctx context.Context, id, digest string, expiry time.Time) error

	// ClearResetToken removes any in-flight reset state.
	ClearResetToken(ctx context.Context, id string) error

	// ConsumeResetToken atomically matches an unexpired digest, rewrites the
	// password from plaintext and clears the reset fields. Returns
	// ErrNotFound when the digest is unknown or expired.
	ConsumeResetToken(ctx context.Context, digest, plaintext string) error
}
