package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dheerajaldak/lms-backend/internal/container"
	handlers "github.com/Dheerajaldak/lms-backend/internal/interface/http"
	"github.com/Dheerajaldak/lms-backend/internal/interface/middleware"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
)

// UserModule wires the account lifecycle routes.
// Public: register, login, logout, forgot/reset password.
// Protected: profile fetch/update, change password.
type UserModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/user/register", registerLimiter, m.Handler.Register)
	rg.POST("/user/login", loginLimiter, m.Handler.Login)
	rg.GET("/user/logout", m.Handler.Logout)
	rg.POST("/user/forgot-password", forgotLimiter, m.Handler.ForgotPassword)
	rg.POST("/user/reset-password/:resetToken", resetLimiter, m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/user/me", m.Handler.GetProfile)
		auth.POST("/user/change-password", m.Handler.ChangePassword)
		auth.PUT("/user/update", m.Handler.UpdateProfile)
	}
}
