package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	"github.com/Dheerajaldak/lms-backend/internal/domain/repository"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
)

// UserRepository is the postgres-backed user directory. It owns the hashing
// hook: every path that writes the password column takes plaintext and stores
// a bcrypt hash, and the profile update path cannot touch the column at all.
// Email uniqueness is enforced by the table constraint, not a read-then-write.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	hash, err := helpers.HashPassword(u.Password)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, role, avatar_public_id, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, role, created_at, updated_at
	`, u.Email, hash, u.FullName, u.Role, u.AvatarPublicID, u.AvatarURL)

	if err := row.Scan(&u.ID, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	u.Password = "" // plaintext never leaves the directory
	return nil
}

const userColumns = `id, email, full_name, role, avatar_public_id, avatar_url, reset_digest, reset_expiry, created_at, updated_at`

func (r *UserRepository) scanUser(row pgx.Row, withPassword bool) (*entity.User, error) {
	u := &entity.User{}
	dest := []any{&u.ID, &u.Email, &u.FullName, &u.Role, &u.AvatarPublicID, &u.AvatarURL,
		&u.ResetDigest, &u.ResetExpiry, &u.CreatedAt, &u.UpdatedAt}
	if withPassword {
		dest = append(dest, &u.Password)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return r.scanUser(row, false)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return r.scanUser(row, false)
}

func (r *UserRepository) GetByIDWithPassword(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+`, password_hash FROM users WHERE id = $1`, id)
	return r.scanUser(row, true)
}

func (r *UserRepository) GetByEmailWithPassword(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+`, password_hash FROM users WHERE email = $1`, email)
	return r.scanUser(row, true)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET full_name = $1, avatar_public_id = $2, avatar_url = $3, updated_at = $4
		WHERE id = $5
	`, u.FullName, u.AvatarPublicID, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, plaintext string) error {
	hash, err := helpers.HashPassword(plaintext)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, digest string, expiry time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_digest = $1, reset_expiry = $2, updated_at = now() WHERE id = $3
	`, digest, expiry, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_digest = NULL, reset_expiry = NULL, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeResetToken matches, rewrites and clears in one statement so a reset
// token can never be spent twice.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, digest, plaintext string) error {
	hash, err := helpers.HashPassword(plaintext)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, reset_digest = NULL, reset_expiry = NULL, updated_at = now()
		WHERE reset_digest = $2 AND reset_expiry > now()
	`, hash, digest)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
