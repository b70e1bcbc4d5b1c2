package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
)

func TestJWTManager_IssueVerify(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("test-secret", time.Hour)
	u := &entity.User{ID: "user-1", Email: "alice@example.com", Role: entity.RoleAdmin}

	token, exp, err := m.Issue(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestJWTManager_VerifyExpired(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("test-secret", -time.Minute)
	token, _, err := m.Issue(&entity.User{ID: "user-1", Email: "a@b.c", Role: entity.RoleUser})
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_VerifyWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewJWTManager("secret-a", time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour)

	token, _, err := issuer.Issue(&entity.User{ID: "user-1", Email: "a@b.c", Role: entity.RoleUser})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_VerifyTampered(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("test-secret", time.Hour)
	token, _, err := m.Issue(&entity.User{ID: "user-1", Email: "a@b.c", Role: entity.RoleUser})
	require.NoError(t, err)

	_, err = m.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
