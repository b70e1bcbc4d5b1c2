package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dheerajaldak/lms-backend/config"
	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	repo "github.com/Dheerajaldak/lms-backend/internal/domain/repository"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
	"github.com/Dheerajaldak/lms-backend/pkg/mailer"
	tpl "github.com/Dheerajaldak/lms-backend/pkg/mailer/templates"
)

var (
	// ErrInvalidCredentials is deliberately the same for a wrong password and
	// an unregistered email so login cannot be used to probe for accounts.
	ErrInvalidCredentials = errors.New("email or password does not match")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	// ErrInvalidOrExpiredToken covers unknown, spent and expired reset tokens
	// uniformly.
	ErrInvalidOrExpiredToken = errors.New("token is invalid or expired, please try again")
)

// AuthService orchestrates the credential lifecycle: registration, login,
// profile, change-password and the time-boxed reset handshake. Hashing lives
// in the user directory, signing in the JWT manager, reset secrets in
// helpers/reset.go; this type only sequences them.
type AuthService struct {
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Media    MediaUploader
	Notifier Notifier
	Pub      *helpers.RabbitPublisher
	Logger   *logrus.Logger
	Cfg      *config.Config
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, media MediaUploader, notifier Notifier, pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Media: media, Notifier: notifier, Pub: pub, Logger: logger, Cfg: cfg}
}

// SessionToken is an issued session token plus its expiry, for the cookie.
type SessionToken struct {
	Value  string
	Expiry time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	// AvatarPath is an optional local temp file from the multipart request.
	AvatarPath string
}

// Register creates the account with a placeholder avatar, optionally replaces
// it via the media collaborator, and issues a session token. An upload
// failure after the insert does not roll the account back; the caller gets
// the error and the user can retry via profile update.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, SessionToken, error) {
	u := &entity.User{
		Email:          normalizeEmail(in.Email),
		FullName:       normalizeName(in.FullName),
		Password:       in.Password,
		Role:           entity.RoleUser,
		AvatarPublicID: normalizeEmail(in.Email),
		AvatarURL:      s.Cfg.PlaceholderAvatarURL,
	}

	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, SessionToken{}, ErrDuplicateEmail
		}
		return nil, SessionToken{}, err
	}

	if in.AvatarPath != "" {
		res, err := s.uploadImage(ctx, in.AvatarPath)
		if err != nil {
			return nil, SessionToken{}, fmt.Errorf("avatar upload: %w", err)
		}
		u.AvatarPublicID = res.PublicID
		u.AvatarURL = res.SecureURL
		if err := s.Users.UpdateProfile(ctx, u); err != nil {
			return nil, SessionToken{}, err
		}
	}

	s.enqueueWelcomeEmail(ctx, u)

	token, err := s.issueToken(u)
	if err != nil {
		return nil, SessionToken{}, err
	}
	return u, token, nil
}

// Login validates credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, SessionToken, error) {
	u, err := s.Users.GetByEmailWithPassword(ctx, normalizeEmail(email))
	if err != nil {
		return nil, SessionToken{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, SessionToken{}, ErrInvalidCredentials
	}
	u.Password = ""

	token, err := s.issueToken(u)
	if err != nil {
		return nil, SessionToken{}, err
	}
	return u, token, nil
}

// GetProfile returns the user for an already-authenticated id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ChangePassword verifies the old password before rewriting. Existing session
// tokens stay valid until their own expiry.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.Users.GetByIDWithPassword(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return ErrInvalidCredentials
	}
	return s.Users.UpdatePassword(ctx, userID, newPassword)
}

// ForgotPassword starts the reset handshake: generate the one-time secret,
// persist only its digest with a 15 minute expiry, mail the link. If the mail
// never goes out the stored state is rolled back so no valid token dangles.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return ErrUserNotFound
	}

	plaintext, digest, err := helpers.GenerateResetToken()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(helpers.ResetTokenTTL)
	if err := s.Users.SetResetToken(ctx, u.ID, digest, expiry); err != nil {
		return err
	}

	resetURL := strings.TrimRight(s.Cfg.FrontendURL, "/") + "/reset-password/" + plaintext
	html, err := tpl.RenderHTML(tpl.ResetPassword, map[string]any{
		"Name":      u.FullName,
		"ResetURL":  resetURL,
		"ExpiresAt": expiry.UTC(),
	})
	if err != nil {
		return err
	}
	text := "You can reset your password here: " + resetURL +
		"\nIf you have not requested this, kindly ignore this email."

	if err := s.Notifier.Send(ctx, u.Email, tpl.Subject(tpl.ResetPassword), text, html); err != nil {
		if clearErr := s.Users.ClearResetToken(ctx, u.ID); clearErr != nil {
			s.Logger.WithError(clearErr).WithField("user_id", u.ID).Error("clear reset token after failed delivery")
		}
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token. Match, expiry check, rewrite and
// clearing are one atomic directory operation, so a token is spent at most
// once even under concurrent attempts.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	digest := helpers.HashResetToken(token)
	if err := s.Users.ConsumeResetToken(ctx, digest, newPassword); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	return nil
}

type UpdateProfileInput struct {
	FullName   string
	AvatarPath string
}

// UpdateProfile rewrites the mutable fields only: full name and avatar.
// Email and role are immutable through this path.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if in.FullName != "" {
		u.FullName = normalizeName(in.FullName)
	}
	if in.AvatarPath != "" {
		// The placeholder public id is the email; only delete real objects.
		if u.AvatarPublicID != "" && u.AvatarPublicID != u.Email {
			if err := s.Media.Delete(ctx, u.AvatarPublicID); err != nil {
				s.Logger.WithError(err).WithField("public_id", u.AvatarPublicID).Warn("delete old avatar")
			}
		}
		res, err := s.uploadImage(ctx, in.AvatarPath)
		if err != nil {
			return nil, fmt.Errorf("avatar upload: %w", err)
		}
		u.AvatarPublicID = res.PublicID
		u.AvatarURL = res.SecureURL
	}

	if err := s.Users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// uploadImage pushes a local temp file to the media collaborator with the
// avatar crop options and removes the temp file after the attempt, success or
// not.
func (s *AuthService) uploadImage(ctx context.Context, localPath string) (UploadResult, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil {
			s.Logger.WithError(err).WithField("path", localPath).Warn("remove temp upload")
		}
	}()
	return s.Media.Upload(ctx, localPath, UploadOptions{
		Folder:  s.Cfg.GCSFolder,
		Width:   250,
		Height:  250,
		Gravity: "faces",
		Crop:    "fill",
	})
}

// enqueueWelcomeEmail is best effort; registration never fails because the
// queue is down.
func (s *AuthService) enqueueWelcomeEmail(ctx context.Context, u *entity.User) {
	if s.Pub == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data: map[string]any{
			"Name":        u.FullName,
			"AppName":     s.Cfg.AppName,
			"FrontendURL": s.Cfg.FrontendURL,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("to", u.Email).Warn("enqueue welcome email")
	}
}

func (s *AuthService) issueToken(u *entity.User) (SessionToken, error) {
	value, exp, err := s.JWT.Issue(u)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue session token")
		return SessionToken{}, err
	}
	return SessionToken{Value: value, Expiry: exp}, nil
}
