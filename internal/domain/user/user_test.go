package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserNormalizesEmail(t *testing.T) {
	u := NewUser("  Admin@Example.COM ", "hash")

	assert.Equal(t, "admin@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.Equal(t, 1, u.Version)
}

func TestUserValidate(t *testing.T) {
	u := NewUser("admin@example.com", "hash")
	require.NoError(t, u.Validate(context.Background()))

	u.Email = "not-an-email"
	assert.Error(t, u.Validate(context.Background()))

	u.Email = ""
	assert.Error(t, u.Validate(context.Background()))
}

func TestFailedLoginLocksAccount(t *testing.T) {
	u := NewUser("admin@example.com", "hash")

	for i := 0; i < 4; i++ {
		u.RecordFailedLogin(5, 15*time.Minute)
		assert.False(t, u.IsLocked())
	}

	u.RecordFailedLogin(5, 15*time.Minute)
	assert.True(t, u.IsLocked())
	assert.Error(t, u.CanLogin())

	u.RecordSuccessfulLogin()
	assert.False(t, u.IsLocked())
	assert.Zero(t, u.FailedLoginAttempts)
	require.NotNil(t, u.LastLoginAt)
}

func TestDisabledAccountCannotLogin(t *testing.T) {
	u := NewUser("admin@example.com", "hash")
	u.IsActive = false

	assert.Error(t, u.CanLogin())
}
