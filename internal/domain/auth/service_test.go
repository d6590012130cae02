package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/domain/user"
)

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[id.ID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[id.ID]*user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*user.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (f *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*user.User], error) {
	return domain.ListResult[*user.User]{}, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, nopTxManager{}, jwtSvc, DefaultServiceConfig()), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Owner@Example.com",
		Password: "correct horse",
		Name:     "Owner",
		IsAdmin:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", u.Email)

	token, logged, err := svc.Login(context.Background(), Credentials{
		Email:    "owner@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.NotNil(t, logged.LastLoginAt)

	principal, err := NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, principal.UserID)
	assert.Equal(t, "owner@example.com", principal.Email)
	assert.True(t, principal.IsAdmin)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "long enough"})
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "short"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestLogin_WrongPasswordLocksAfterLimit(t *testing.T) {
	repo := newFakeUserRepo()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	cfg := ServiceConfig{MaxLoginAttempts: 2, LockDuration: time.Hour, PasswordMinLength: 8}
	svc := NewService(repo, nopTxManager{}, jwtSvc, cfg)

	u, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "long enough"})
	require.NoError(t, err)

	for i := 0; i < cfg.MaxLoginAttempts; i++ {
		_, _, err = svc.Login(context.Background(), Credentials{Email: "a@b.c", Password: "wrong"})
		require.Error(t, err)
	}

	assert.True(t, repo.users[u.ID].IsLocked())

	// Even the right password is rejected while locked.
	_, _, err = svc.Login(context.Background(), Credentials{Email: "a@b.c", Password: "long enough"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	good := NewJWTService(DefaultJWTConfig("secret-a"))
	token, _, err := good.GenerateAccessToken(id.New(), "a@b.c", "A", false)
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("secret-b")).ValidateToken(token)
	require.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)

	u, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "long enough"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), u.ID, "wrong", "another long one")
	require.Error(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, "long enough", "another long one"))

	_, _, err = svc.Login(context.Background(), Credentials{Email: "a@b.c", Password: "another long one"})
	require.NoError(t, err)
}
