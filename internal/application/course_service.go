package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/Dheerajaldak/lms-backend/config"
	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	repo "github.com/Dheerajaldak/lms-backend/internal/domain/repository"
)

var ErrCourseNotFound = errors.New("course not found")

// CourseService handles catalog CRUD, lecture media and course search.
type CourseService struct {
	Courses repo.CourseRepository
	Media   MediaUploader
	ES      *elasticsearch.Client
	ESIndex string
	Logger  *logrus.Logger
	Cfg     *config.Config
}

func NewCourseService(courses repo.CourseRepository, media MediaUploader, es *elasticsearch.Client, esIndex string, logger *logrus.Logger, cfg *config.Config) *CourseService {
	return &CourseService{Courses: courses, Media: media, ES: es, ESIndex: esIndex, Logger: logger, Cfg: cfg}
}

func (s *CourseService) List(ctx context.Context) ([]*entity.Course, error) {
	return s.Courses.List(ctx)
}

func (s *CourseService) Get(ctx context.Context, id string) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

func (s *CourseService) Lectures(ctx context.Context, courseID string) ([]*entity.Lecture, error) {
	if _, err := s.Courses.GetByID(ctx, courseID); err != nil {
		return nil, ErrCourseNotFound
	}
	return s.Courses.ListLectures(ctx, courseID)
}

type CourseInput struct {
	Title         string
	Description   string
	Category      string
	CreatedBy     string
	ThumbnailPath string
}

func (s *CourseService) Create(ctx context.Context, in CourseInput) (*entity.Course, error) {
	c := &entity.Course{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		CreatedBy:   in.CreatedBy,
	}
	if err := s.Courses.Create(ctx, c); err != nil {
		return nil, err
	}

	if in.ThumbnailPath != "" {
		res, err := s.uploadMedia(ctx, in.ThumbnailPath)
		if err != nil {
			return nil, fmt.Errorf("thumbnail upload: %w", err)
		}
		c.ThumbnailPublicID = res.PublicID
		c.ThumbnailURL = res.SecureURL
		if err := s.Courses.Update(ctx, c); err != nil {
			return nil, err
		}
	}

	s.indexCourse(ctx, c)
	return c, nil
}

type CourseUpdateInput struct {
	Title         string
	Description   string
	Category      string
	CreatedBy     string
	ThumbnailPath string
}

func (s *CourseService) Update(ctx context.Context, id string, in CourseUpdateInput) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	if in.Title != "" {
		c.Title = in.Title
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.Category != "" {
		c.Category = in.Category
	}
	if in.CreatedBy != "" {
		c.CreatedBy = in.CreatedBy
	}
	if in.ThumbnailPath != "" {
		if c.ThumbnailPublicID != "" {
			if err := s.Media.Delete(ctx, c.ThumbnailPublicID); err != nil {
				s.Logger.WithError(err).WithField("public_id", c.ThumbnailPublicID).Warn("delete old thumbnail")
			}
		}
		res, err := s.uploadMedia(ctx, in.ThumbnailPath)
		if err != nil {
			return nil, fmt.Errorf("thumbnail upload: %w", err)
		}
		c.ThumbnailPublicID = res.PublicID
		c.ThumbnailURL = res.SecureURL
	}

	if err := s.Courses.Update(ctx, c); err != nil {
		return nil, err
	}
	s.indexCourse(ctx, c)
	return c, nil
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		return ErrCourseNotFound
	}
	if err := s.Courses.Delete(ctx, id); err != nil {
		return err
	}
	if c.ThumbnailPublicID != "" {
		if err := s.Media.Delete(ctx, c.ThumbnailPublicID); err != nil {
			s.Logger.WithError(err).WithField("public_id", c.ThumbnailPublicID).Warn("delete course thumbnail")
		}
	}
	s.deindexCourse(ctx, id)
	return nil
}

type LectureInput struct {
	Title       string
	Description string
	MediaPath   string
}

func (s *CourseService) AddLecture(ctx context.Context, courseID string, in LectureInput) (*entity.Lecture, error) {
	if _, err := s.Courses.GetByID(ctx, courseID); err != nil {
		return nil, ErrCourseNotFound
	}
	l := &entity.Lecture{
		CourseID:    courseID,
		Title:       in.Title,
		Description: in.Description,
	}
	if in.MediaPath != "" {
		res, err := s.uploadMedia(ctx, in.MediaPath)
		if err != nil {
			return nil, fmt.Errorf("lecture media upload: %w", err)
		}
		l.MediaPublicID = res.PublicID
		l.MediaURL = res.SecureURL
	}
	if err := s.Courses.AddLecture(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *CourseService) RemoveLecture(ctx context.Context, courseID, lectureID string) error {
	l, err := s.Courses.RemoveLecture(ctx, courseID, lectureID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if l.MediaPublicID != "" {
		if err := s.Media.Delete(ctx, l.MediaPublicID); err != nil {
			s.Logger.WithError(err).WithField("public_id", l.MediaPublicID).Warn("delete lecture media")
		}
	}
	return nil
}

// uploadMedia pushes a local temp file to storage under the configured folder
// and removes the temp file after the attempt.
func (s *CourseService) uploadMedia(ctx context.Context, localPath string) (UploadResult, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil {
			s.Logger.WithError(err).WithField("path", localPath).Warn("remove temp upload")
		}
	}()
	return s.Media.Upload(ctx, localPath, UploadOptions{Folder: s.Cfg.GCSFolder})
}

func (s *CourseService) indexCourse(ctx context.Context, c *entity.Course) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          c.ID,
		"title":       c.Title,
		"description": c.Description,
		"category":    c.Category,
		"created_by":  c.CreatedBy,
		"created_at":  c.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  c.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: c.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(esCtx, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("course_id", c.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("course_id", c.ID).Warn("es index response error")
	}
}

func (s *CourseService) deindexCourse(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(esCtx, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("course_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query over title, description and category.
func (s *CourseService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(esCtx),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
