package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dheerajaldak/lms-backend/config"
	"github.com/Dheerajaldak/lms-backend/internal/application"
	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	"github.com/Dheerajaldak/lms-backend/internal/interface/middleware"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
	"github.com/Dheerajaldak/lms-backend/pkg/response"
	"github.com/Dheerajaldak/lms-backend/pkg/validation"
)

// AuthHandler exposes the account lifecycle over HTTP. The session token
// travels in an httpOnly cookie; the handler never serializes the password.
type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cfg     *config.Config
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Svc:     svc,
		Logger:  logger,
		Cfg:     cfg,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure()),
	}
}

type registerRequest struct {
	FullName string `form:"fullName" json:"fullName" binding:"required,fullname"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

type updateProfileRequest struct {
	FullName string `form:"fullName" json:"fullName" binding:"omitempty,fullname"`
}

// userPayload shapes the response body; the password hash stays out of every
// payload by construction.
func userPayload(u *entity.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"fullName": u.FullName,
		"email":    u.Email,
		"role":     u.Role,
		"avatar": gin.H{
			"public_id":  u.AvatarPublicID,
			"secure_url": u.AvatarURL,
		},
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// saveUpload spills a multipart file into the upload dir and returns its
// path; empty when the request carries no file under that field.
func (h *AuthHandler) saveUpload(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	return saveMultipart(c, file, h.Cfg.UploadDir)
}

func saveMultipart(c *gin.Context, file *multipart.FileHeader, dir string) (string, error) {
	dst := filepath.Join(dir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrDuplicateEmail):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, application.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidOrExpiredToken):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.Logger.WithError(err).Error("auth request failed")
		response.Error(c, http.StatusInternalServerError, "something went wrong, please try again", nil)
	}
}

// Register POST /user/register (multipart: fullName, email, password, avatar?)
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}
	avatarPath, err := h.saveUpload(c, "avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read avatar upload", nil)
		return
	}

	u, token, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		AvatarPath: avatarPath,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.Cookies.Set(c, token.Value, token.Expiry)
	response.Success(c, http.StatusCreated, userPayload(u), "user registered successfully")
}

// Login POST /user/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}
	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.Cookies.Set(c, token.Value, token.Expiry)
	response.Success(c, http.StatusOK, userPayload(u), "user logged in successfully")
}

// Logout GET /user/logout — clears the cookie; idempotent, the token itself
// expires on its own schedule.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, nil, "user logged out successfully")
}

// GetProfile GET /user/me (auth required)
func (h *AuthHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userPayload(u), "user details")
}

// ChangePassword POST /user/change-password (auth required)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "all fields are mandatory", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "password changed successfully")
}

// ForgotPassword POST /user/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "email is required", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "reset password link has been sent to "+req.Email)
}

// ResetPassword POST /user/reset-password/:resetToken
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "password is required", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), c.Param("resetToken"), req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "password changed successfully")
}

// UpdateProfile PUT /user/update (auth required; multipart: fullName?, avatar?)
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	avatarPath, err := h.saveUpload(c, "avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read avatar upload", nil)
		return
	}

	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		FullName:   req.FullName,
		AvatarPath: avatarPath,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userPayload(u), "user updated successfully")
}
