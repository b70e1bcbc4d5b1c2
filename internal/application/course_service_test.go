package application

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	repo "github.com/Dheerajaldak/lms-backend/internal/domain/repository"
)

type fakeCourseRepo struct {
	mu       sync.Mutex
	courses  map[string]*entity.Course
	lectures map[string][]*entity.Lecture
	nextID   int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses:  make(map[string]*entity.Course),
		lectures: make(map[string][]*entity.Lecture),
	}
}

func (f *fakeCourseRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeCourseRepo) Create(_ context.Context, c *entity.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id("course")
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id string) (*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseRepo) List(_ context.Context) ([]*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Course, 0, len(f.courses))
	for _, c := range f.courses {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCourseRepo) Update(_ context.Context, c *entity.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[c.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *c
	cp.UpdatedAt = time.Now()
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.courses, id)
	delete(f.lectures, id)
	return nil
}

func (f *fakeCourseRepo) ListLectures(_ context.Context, courseID string) ([]*entity.Lecture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Lecture, 0, len(f.lectures[courseID]))
	for _, l := range f.lectures[courseID] {
		lp := *l
		out = append(out, &lp)
	}
	return out, nil
}

func (f *fakeCourseRepo) AddLecture(_ context.Context, l *entity.Lecture) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[l.CourseID]
	if !ok {
		return repo.ErrNotFound
	}
	l.ID = f.id("lecture")
	l.CreatedAt = time.Now()
	lp := *l
	f.lectures[l.CourseID] = append(f.lectures[l.CourseID], &lp)
	c.NumberOfLectures++
	return nil
}

func (f *fakeCourseRepo) RemoveLecture(_ context.Context, courseID, lectureID string) (*entity.Lecture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[courseID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for i, l := range f.lectures[courseID] {
		if l.ID == lectureID {
			f.lectures[courseID] = append(f.lectures[courseID][:i], f.lectures[courseID][i+1:]...)
			c.NumberOfLectures--
			return l, nil
		}
	}
	return nil, repo.ErrNotFound
}

func newTestCourseService(courses repo.CourseRepository, media MediaUploader) *CourseService {
	// nil ES client: indexing is a no-op and Search returns no hits.
	return NewCourseService(courses, media, nil, "", testLogger(), testConfig())
}

func tempMedia(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "media-*.mp4")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestCourseCreateAndGet(t *testing.T) {
	t.Parallel()

	courses := newFakeCourseRepo()
	svc := newTestCourseService(courses, &fakeUploader{})

	c, err := svc.Create(context.Background(), CourseInput{
		Title:       "Go from scratch",
		Description: "A beginner course",
		Category:    "programming",
		CreatedBy:   "admin@lms.local",
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go from scratch", got.Title)
	assert.Equal(t, 0, got.NumberOfLectures)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseCreateWithThumbnail(t *testing.T) {
	t.Parallel()

	courses := newFakeCourseRepo()
	uploader := &fakeUploader{}
	svc := newTestCourseService(courses, uploader)

	path := tempMedia(t)
	c, err := svc.Create(context.Background(), CourseInput{
		Title:         "Go from scratch",
		Description:   "A beginner course",
		Category:      "programming",
		ThumbnailPath: path,
	})
	require.NoError(t, err)
	assert.Equal(t, "lms/object-1", c.ThumbnailPublicID)
	assert.NotEmpty(t, c.ThumbnailURL)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCourseUpdatePartial(t *testing.T) {
	t.Parallel()

	courses := newFakeCourseRepo()
	svc := newTestCourseService(courses, &fakeUploader{})

	c, err := svc.Create(context.Background(), CourseInput{
		Title:       "Go from scratch",
		Description: "A beginner course",
		Category:    "programming",
	})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), c.ID, CourseUpdateInput{Title: "Go, revisited"})
	require.NoError(t, err)
	assert.Equal(t, "Go, revisited", got.Title)
	assert.Equal(t, "A beginner course", got.Description)
	assert.Equal(t, "programming", got.Category)

	_, err = svc.Update(context.Background(), "missing", CourseUpdateInput{Title: "x"})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseUpdateReplacesThumbnail(t *testing.T) {
	t.Parallel()

	courses := newFakeCourseRepo()
	uploader := &fakeUploader{}
	svc := newTestCourseService(courses, uploader)

	c, err := svc.Create(context.Background(), CourseInput{
		Title:         "Go from scratch",
		Description:   "d",
		Category:      "programming",
		ThumbnailPath: tempMedia(t),
	})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), c.ID, CourseUpdateInput{ThumbnailPath: tempMedia(t)})
	require.NoError(t, err)
	assert.Equal(t, "lms/object-2", got.ThumbnailPublicID)
	assert.Equal(t, []string{"lms/object-1"}, uploader.deleted)
}

func TestCourseDeleteCleansUpThumbnail(t *testing.T) {
	t.Parallel()

	courses := newFakeCourseRepo()
	uploader := &fakeUploader{}
	svc := newTestCourseService(courses, uploader)

	c, err := svc.Create(context.Background(), CourseInput{
		Title:         "Go from scratch",
		Description:   "d",
		Category:      "programming",
		ThumbnailPath: tempMedia(t),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), c.ID))
	assert.Equal(t, []string{"lms/object-1"}, uploader.deleted)

	_, err = svc.Get(context.Background(), c.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), c.ID), ErrCourseNotFound)
}

func TestLectureLifecycle(t *testing.T) {
	t.Parallel()

	courses := newFakeCourseRepo()
	uploader := &fakeUploader{}
	svc := newTestCourseService(courses, uploader)

	c, err := svc.Create(context.Background(), CourseInput{
		Title:       "Go from scratch",
		Description: "d",
		Category:    "programming",
	})
	require.NoError(t, err)

	l, err := svc.AddLecture(context.Background(), c.ID, LectureInput{
		Title:       "Intro",
		Description: "Hello world",
		MediaPath:   tempMedia(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "lms/object-1", l.MediaPublicID)

	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumberOfLectures)

	ls, err := svc.Lectures(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, "Intro", ls[0].Title)

	require.NoError(t, svc.RemoveLecture(context.Background(), c.ID, l.ID))
	assert.Equal(t, []string{"lms/object-1"}, uploader.deleted)

	got, err = svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumberOfLectures)

	assert.ErrorIs(t, svc.RemoveLecture(context.Background(), c.ID, l.ID), ErrCourseNotFound)
}

func TestLecturesUnknownCourse(t *testing.T) {
	t.Parallel()

	svc := newTestCourseService(newFakeCourseRepo(), &fakeUploader{})

	_, err := svc.Lectures(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = svc.AddLecture(context.Background(), "missing", LectureInput{Title: "x"})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestSearchWithoutES(t *testing.T) {
	t.Parallel()

	svc := newTestCourseService(newFakeCourseRepo(), &fakeUploader{})
	hits, err := svc.Search(context.Background(), "go", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
