package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dheerajaldak/lms-backend/internal/container"
	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	handlers "github.com/Dheerajaldak/lms-backend/internal/interface/http"
	"github.com/Dheerajaldak/lms-backend/internal/interface/middleware"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
)

// CourseModule wires the course catalog routes. Reads are public or
// authenticated; writes require the ADMIN role claim.
type CourseModule struct {
	Handler *handlers.CourseHandler
	JWT     *helpers.JWTManager
}

func NewCourseModule(h *handlers.CourseHandler, jwt *helpers.JWTManager) *CourseModule {
	return &CourseModule{Handler: h, JWT: jwt}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	listLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/courses", listLimiter, m.Handler.List)
	rg.GET("/courses/search", listLimiter, m.Handler.Search)
	rg.GET("/courses/:id", listLimiter, m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/courses/:id/lectures", m.Handler.Lectures)
	}

	admin := rg.Group("/")
	admin.Use(middleware.Auth(m.JWT))
	admin.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		admin.POST("/courses", m.Handler.Create)
		admin.PUT("/courses/:id", m.Handler.Update)
		admin.DELETE("/courses/:id", m.Handler.Delete)
		admin.POST("/courses/:id/lectures", m.Handler.AddLecture)
		admin.DELETE("/courses/:id/lectures/:lectureId", m.Handler.RemoveLecture)
	}
}
