package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dheerajaldak/lms-backend/config"
	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	repo "github.com/Dheerajaldak/lms-backend/internal/domain/repository"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
)

// fakeUserRepo mirrors the postgres implementation's contract: it owns
// hashing, rejects duplicate emails, and consumes reset tokens atomically.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	hash, err := helpers.HashPassword(u.Password)
	if err != nil {
		return err
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	stored := cloneUser(u)
	stored.Password = hash
	f.users[u.ID] = stored

	u.Password = ""
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := cloneUser(u)
	c.Password = ""
	return c, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := cloneUser(u)
			c.Password = ""
			return c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByIDWithPassword(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (f *fakeUserRepo) GetByEmailWithPassword(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	stored.FullName = u.FullName
	stored.AvatarPublicID = u.AvatarPublicID
	stored.AvatarURL = u.AvatarURL
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, plaintext string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	hash, err := helpers.HashPassword(plaintext)
	if err != nil {
		return err
	}
	stored.Password = hash
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, id, digest string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	stored.ResetDigest = &digest
	stored.ResetExpiry = &expiry
	return nil
}

func (f *fakeUserRepo) ClearResetToken(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	stored.ResetDigest = nil
	stored.ResetExpiry = nil
	return nil
}

func (f *fakeUserRepo) ConsumeResetToken(_ context.Context, digest, plaintext string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetDigest == nil || *u.ResetDigest != digest {
			continue
		}
		if u.ResetExpiry == nil || !u.ResetExpiry.After(time.Now()) {
			return repo.ErrNotFound
		}
		hash, err := helpers.HashPassword(plaintext)
		if err != nil {
			return err
		}
		u.Password = hash
		u.ResetDigest = nil
		u.ResetExpiry = nil
		return nil
	}
	return repo.ErrNotFound
}

// expireReset backdates the stored expiry for tests.
func (f *fakeUserRepo) expireReset(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	past := time.Now().Add(-time.Minute)
	f.users[id].ResetExpiry = &past
}

func (f *fakeUserRepo) storedHash(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].Password
}

func (f *fakeUserRepo) resetState(id string) (*string, *time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].ResetDigest, f.users[id].ResetExpiry
}

type sentMail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, text, html string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Text: text, HTML: html})
	return nil
}

func (n *fakeNotifier) last(t *testing.T) sentMail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
}

func (u *fakeUploader) Upload(_ context.Context, localPath string, _ UploadOptions) (UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads = append(u.uploads, localPath)
	id := fmt.Sprintf("lms/object-%d", len(u.uploads))
	return UploadResult{PublicID: id, SecureURL: "https://storage.example.com/" + id}, nil
}

func (u *fakeUploader) Delete(_ context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, publicID)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:              "lms-backend",
		FrontendURL:          "http://localhost:3000",
		GCSFolder:            "lms",
		PlaceholderAvatarURL: "https://storage.example.com/placeholder.png",
	}
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAuthService(users repo.UserRepository, notifier Notifier, media MediaUploader) *AuthService {
	return NewAuthService(
		users,
		helpers.NewJWTManager("test-secret", time.Hour),
		media,
		notifier,
		nil,
		testLogger(),
		testConfig(),
	)
}

func registerAlice(t *testing.T, svc *AuthService) *entity.User {
	t.Helper()
	u, _, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Alice Doe",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newTestAuthService(users, &fakeNotifier{}, &fakeUploader{})

	u := registerAlice(t, svc)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice doe", u.FullName)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.Empty(t, u.Password)
	assert.Equal(t, "https://storage.example.com/placeholder.png", u.AvatarURL)

	// Stored credential is a hash, never the plaintext.
	hash := users.storedHash(u.ID)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, helpers.CompareHashAndPassword(hash, "password123"))

	got, token, err := svc.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.Password)

	claims, err := svc.JWT.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, u.Email, claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newTestAuthService(users, &fakeNotifier{}, &fakeUploader{})
	registerAlice(t, svc)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Other Alice",
		Email:    "  ALICE@example.com ",
		Password: "different456",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterWithAvatarUpload(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	uploader := &fakeUploader{}
	svc := newTestAuthService(users, &fakeNotifier{}, uploader)

	f, err := os.CreateTemp(t.TempDir(), "avatar-*.png")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	u, _, err := svc.Register(context.Background(), RegisterInput{
		FullName:   "Alice Doe",
		Email:      "alice@example.com",
		Password:   "password123",
		AvatarPath: f.Name(),
	})
	require.NoError(t, err)
	assert.Equal(t, "lms/object-1", u.AvatarPublicID)
	assert.Equal(t, "https://storage.example.com/lms/object-1", u.AvatarURL)

	// The temp file is consumed by the upload path.
	_, statErr := os.Stat(f.Name())
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoginUniformError(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newTestAuthService(users, &fakeNotifier{}, &fakeUploader{})
	registerAlice(t, svc)

	_, _, wrongPass := svc.Login(context.Background(), "alice@example.com", "wrong-pass")
	_, _, noUser := svc.Login(context.Background(), "nobody@example.com", "password123")

	// Wrong password and unknown email are indistinguishable.
	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newTestAuthService(users, &fakeNotifier{}, &fakeUploader{})
	u := registerAlice(t, svc)

	err := svc.ChangePassword(context.Background(), u.ID, "password123", "newpass456")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), u.Email, "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), u.Email, "newpass456")
	assert.NoError(t, err)
}

func TestChangePasswordWrongOldLeavesHashIntact(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newTestAuthService(users, &fakeNotifier{}, &fakeUploader{})
	u := registerAlice(t, svc)
	before := users.storedHash(u.ID)

	err := svc.ChangePassword(context.Background(), u.ID, "not-the-password", "newpass456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, before, users.storedHash(u.ID))

	_, _, err = svc.Login(context.Background(), u.Email, "password123")
	assert.NoError(t, err)
}

// resetTokenFromMail pulls the plaintext token out of the emailed link.
func resetTokenFromMail(t *testing.T, m sentMail) string {
	t.Helper()
	const marker = "/reset-password/"
	idx := strings.Index(m.Text, marker)
	require.GreaterOrEqual(t, idx, 0)
	rest := m.Text[idx+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

func TestForgotThenResetPassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newTestAuthService(users, notifier, &fakeUploader{})
	u := registerAlice(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), u.Email))

	mail := notifier.last(t)
	assert.Equal(t, u.Email, mail.To)
	assert.Contains(t, mail.HTML, "/reset-password/")
	token := resetTokenFromMail(t, mail)
	require.NotEmpty(t, token)

	// Only the digest is stored, never the plaintext.
	digest, expiry := users.resetState(u.ID)
	require.NotNil(t, digest)
	assert.NotEqual(t, token, *digest)
	assert.Equal(t, helpers.HashResetToken(token), *digest)
	require.NotNil(t, expiry)
	assert.WithinDuration(t, time.Now().Add(helpers.ResetTokenTTL), *expiry, 5*time.Second)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "resetpass789"))

	_, _, err := svc.Login(context.Background(), u.Email, "resetpass789")
	assert.NoError(t, err)
	_, _, err = svc.Login(context.Background(), u.Email, "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPasswordTokenIsSingleUse(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newTestAuthService(users, notifier, &fakeUploader{})
	u := registerAlice(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), u.Email))
	token := resetTokenFromMail(t, notifier.last(t))

	require.NoError(t, svc.ResetPassword(context.Background(), token, "resetpass789"))

	err := svc.ResetPassword(context.Background(), token, "another-pass")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	// The first rewrite stands.
	_, _, loginErr := svc.Login(context.Background(), u.Email, "resetpass789")
	assert.NoError(t, loginErr)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newTestAuthService(users, notifier, &fakeUploader{})
	u := registerAlice(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), u.Email))
	token := resetTokenFromMail(t, notifier.last(t))
	users.expireReset(u.ID)

	err := svc.ResetPassword(context.Background(), token, "resetpass789")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	_, _, loginErr := svc.Login(context.Background(), u.Email, "password123")
	assert.NoError(t, loginErr)
}

func TestResetPasswordUnknownToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeUserRepo(), &fakeNotifier{}, &fakeUploader{})
	err := svc.ResetPassword(context.Background(), "deadbeef", "whatever9")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestForgotPasswordDeliveryFailureRollsBack(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{fail: errors.New("mailgun down")}
	svc := newTestAuthService(users, notifier, &fakeUploader{})
	u := registerAlice(t, svc)

	err := svc.ForgotPassword(context.Background(), u.Email)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailgun down")

	// No dangling token after a failed delivery.
	digest, expiry := users.resetState(u.ID)
	assert.Nil(t, digest)
	assert.Nil(t, expiry)

	// A later attempt with a healthy notifier succeeds end to end.
	notifier.mu.Lock()
	notifier.fail = nil
	notifier.mu.Unlock()
	require.NoError(t, svc.ForgotPassword(context.Background(), u.Email))
	token := resetTokenFromMail(t, notifier.last(t))
	assert.NoError(t, svc.ResetPassword(context.Background(), token, "resetpass789"))
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeUserRepo(), &fakeNotifier{}, &fakeUploader{})
	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeUserRepo(), &fakeNotifier{}, &fakeUploader{})
	u := registerAlice(t, svc)

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Empty(t, got.Password)

	_, err = svc.GetProfile(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfileNeverTouchesPassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newTestAuthService(users, &fakeNotifier{}, &fakeUploader{})
	u := registerAlice(t, svc)
	before := users.storedHash(u.ID)

	got, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{FullName: "Alice Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "alice renamed", got.FullName)
	assert.Equal(t, before, users.storedHash(u.ID))

	_, _, err = svc.Login(context.Background(), u.Email, "password123")
	assert.NoError(t, err)
}

func TestUpdateProfileReplacesAvatar(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	uploader := &fakeUploader{}
	svc := newTestAuthService(users, &fakeNotifier{}, uploader)
	u := registerAlice(t, svc)

	newAvatar := func() string {
		f, err := os.CreateTemp(t.TempDir(), "avatar-*.png")
		require.NoError(t, err)
		require.NoError(t, f.Close())
		return f.Name()
	}

	// First upload replaces the placeholder; the placeholder is not a stored
	// object, so nothing is deleted.
	got, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{AvatarPath: newAvatar()})
	require.NoError(t, err)
	assert.Equal(t, "lms/object-1", got.AvatarPublicID)
	assert.Empty(t, uploader.deleted)

	// Second upload deletes the previous object.
	got, err = svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{AvatarPath: newAvatar()})
	require.NoError(t, err)
	assert.Equal(t, "lms/object-2", got.AvatarPublicID)
	assert.Equal(t, []string{"lms/object-1"}, uploader.deleted)
}
