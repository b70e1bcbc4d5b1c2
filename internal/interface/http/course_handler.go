package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Dheerajaldak/lms-backend/config"
	"github.com/Dheerajaldak/lms-backend/internal/application"
	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	"github.com/Dheerajaldak/lms-backend/pkg/response"
	"github.com/Dheerajaldak/lms-backend/pkg/validation"
)

type CourseHandler struct {
	Svc    *application.CourseService
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewCourseHandler(svc *application.CourseService, logger *logrus.Logger, cfg *config.Config) *CourseHandler {
	return &CourseHandler{Svc: svc, Logger: logger, Cfg: cfg}
}

type courseRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description" binding:"required"`
	Category    string `form:"category" json:"category" binding:"required"`
	CreatedBy   string `form:"createdBy" json:"createdBy" binding:"required"`
}

type courseUpdateRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Category    string `form:"category" json:"category"`
	CreatedBy   string `form:"createdBy" json:"createdBy"`
}

type lectureRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description" binding:"required"`
}

func coursePayload(c *entity.Course) gin.H {
	return gin.H{
		"id":          c.ID,
		"title":       c.Title,
		"description": c.Description,
		"category":    c.Category,
		"createdBy":   c.CreatedBy,
		"thumbnail": gin.H{
			"public_id":  c.ThumbnailPublicID,
			"secure_url": c.ThumbnailURL,
		},
		"numberOfLectures": c.NumberOfLectures,
		"created_at":       c.CreatedAt,
		"updated_at":       c.UpdatedAt,
	}
}

func lecturePayload(l *entity.Lecture) gin.H {
	return gin.H{
		"id":          l.ID,
		"title":       l.Title,
		"description": l.Description,
		"lecture": gin.H{
			"public_id":  l.MediaPublicID,
			"secure_url": l.MediaURL,
		},
		"created_at": l.CreatedAt,
	}
}

func (h *CourseHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, application.ErrCourseNotFound) {
		response.Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	h.Logger.WithError(err).Error("course request failed")
	response.Error(c, http.StatusInternalServerError, "something went wrong, please try again", nil)
}

func (h *CourseHandler) saveUpload(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	return saveMultipart(c, file, h.Cfg.UploadDir)
}

// List GET /courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(courses))
	for _, course := range courses {
		out = append(out, coursePayload(course))
	}
	response.Success(c, http.StatusOK, out, "all courses fetched successfully")
}

// Get GET /courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, coursePayload(course), "course fetched successfully")
}

// Lectures GET /courses/:id/lectures (auth required)
func (h *CourseHandler) Lectures(c *gin.Context) {
	lectures, err := h.Svc.Lectures(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(lectures))
	for _, l := range lectures {
		out = append(out, lecturePayload(l))
	}
	response.Success(c, http.StatusOK, out, "course lectures fetched successfully")
}

// Create POST /courses (admin; multipart thumbnail?)
func (h *CourseHandler) Create(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}
	thumbPath, err := h.saveUpload(c, "thumbnail")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read thumbnail upload", nil)
		return
	}
	course, err := h.Svc.Create(c.Request.Context(), application.CourseInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		CreatedBy:     req.CreatedBy,
		ThumbnailPath: thumbPath,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, coursePayload(course), "course created successfully")
}

// Update PUT /courses/:id (admin)
func (h *CourseHandler) Update(c *gin.Context) {
	var req courseUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	thumbPath, err := h.saveUpload(c, "thumbnail")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read thumbnail upload", nil)
		return
	}
	course, err := h.Svc.Update(c.Request.Context(), c.Param("id"), application.CourseUpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		CreatedBy:     req.CreatedBy,
		ThumbnailPath: thumbPath,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, coursePayload(course), "course updated successfully")
}

// Delete DELETE /courses/:id (admin)
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "course deleted successfully")
}

// AddLecture POST /courses/:id/lectures (admin; multipart lecture media)
func (h *CourseHandler) AddLecture(c *gin.Context) {
	var req lectureRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}
	mediaPath, err := h.saveUpload(c, "lecture")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read lecture upload", nil)
		return
	}
	lecture, err := h.Svc.AddLecture(c.Request.Context(), c.Param("id"), application.LectureInput{
		Title:       req.Title,
		Description: req.Description,
		MediaPath:   mediaPath,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, lecturePayload(lecture), "lecture added to course successfully")
}

// RemoveLecture DELETE /courses/:id/lectures/:lectureId (admin)
func (h *CourseHandler) RemoveLecture(c *gin.Context) {
	if err := h.Svc.RemoveLecture(c.Request.Context(), c.Param("id"), c.Param("lectureId")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "lecture removed successfully")
}

// Search GET /courses/search?q=&size=
func (h *CourseHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}
