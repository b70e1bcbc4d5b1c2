package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	"github.com/Dheerajaldak/lms-backend/internal/domain/repository"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO courses (title, description, category, created_by, thumbnail_public_id, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, c.Title, c.Description, c.Category, c.CreatedBy, c.ThumbnailPublicID, c.ThumbnailURL)
	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

const courseColumns = `id, title, description, category, created_by, thumbnail_public_id, thumbnail_url, number_of_lectures, created_at, updated_at`

func scanCourse(row pgx.Row) (*entity.Course, error) {
	c := &entity.Course{}
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.CreatedBy,
		&c.ThumbnailPublicID, &c.ThumbnailURL, &c.NumberOfLectures, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return scanCourse(row)
}

func (r *CourseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CourseRepository) Update(ctx context.Context, c *entity.Course) error {
	c.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE courses
		SET title = $1, description = $2, category = $3, created_by = $4,
		    thumbnail_public_id = $5, thumbnail_url = $6, updated_at = $7
		WHERE id = $8
	`, c.Title, c.Description, c.Category, c.CreatedBy, c.ThumbnailPublicID, c.ThumbnailURL, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) ListLectures(ctx context.Context, courseID string) ([]*entity.Lecture, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, course_id, title, description, media_public_id, media_url, created_at
		FROM lectures WHERE course_id = $1 ORDER BY created_at
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Lecture, 0)
	for rows.Next() {
		l := &entity.Lecture{}
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Description,
			&l.MediaPublicID, &l.MediaURL, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AddLecture inserts the lecture and bumps the course counter in one
// transaction.
func (r *CourseRepository) AddLecture(ctx context.Context, l *entity.Lecture) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO lectures (course_id, title, description, media_public_id, media_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, l.CourseID, l.Title, l.Description, l.MediaPublicID, l.MediaURL)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return err
	}

	res, err := tx.Exec(ctx, `
		UPDATE courses SET number_of_lectures = number_of_lectures + 1, updated_at = now() WHERE id = $1
	`, l.CourseID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *CourseRepository) RemoveLecture(ctx context.Context, courseID, lectureID string) (*entity.Lecture, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	l := &entity.Lecture{}
	row := tx.QueryRow(ctx, `
		DELETE FROM lectures WHERE id = $1 AND course_id = $2
		RETURNING id, course_id, title, description, media_public_id, media_url, created_at
	`, lectureID, courseID)
	if err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Description,
		&l.MediaPublicID, &l.MediaURL, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE courses SET number_of_lectures = number_of_lectures - 1, updated_at = now() WHERE id = $1
	`, courseID); err != nil {
		return nil, err
	}
	return l, tx.Commit(ctx)
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
