package repository

import (
	"context"

	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
)

// CourseRepository persists the course catalog. List intentionally omits
// lecture contents; lectures are fetched per course.
type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	List(ctx context.Context) ([]*entity.Course, error)
	Update(ctx context.Context, c *entity.Course) error
	Delete(ctx context.Context, id string) error

	ListLectures(ctx context.Context, courseID string) ([]*entity.Lecture, error)
	AddLecture(ctx context.Context, l *entity.Lecture) error
	// RemoveLecture deletes a lecture and returns the removed row so callers
	// can release its stored media.
	RemoveLecture(ctx context.Context, courseID, lectureID string) (*entity.Lecture, error)
}
