package identity

import (
	"context"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/identity"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	identity.BcryptCost = bcrypt.MinCost
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  30 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test",
		MaxRefreshCount:        5,
	})
}

func newTestAuthService(repo *MockUserRepository, cfg AuthServiceConfig) (*AuthService, *auth.InMemoryTokenBlacklist) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(repo, newTestJWTService(), blacklist, nil, cfg, zap.NewNop()), blacklist
}

func mustUser(t *testing.T, email string, admin bool) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Test User", email, "testpassword", admin)
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("ExistsByEmail", ctx, "test@example.com").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := svc.Register(ctx, RegisterRequest{Name: "Test User", Email: "Test@Example.com", Password: "testpassword"})

		require.NoError(t, err)
		assert.Equal(t, "test@example.com", resp.Email)
		assert.False(t, resp.IsSuperAdmin)
		assert.Nil(t, resp.UpdatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("ExistsByEmail", ctx, "test@example.com").Return(true, nil)

		_, err := svc.Register(ctx, RegisterRequest{Name: "Test User", Email: "test@example.com", Password: "testpassword"})

		assert.ErrorIs(t, err, identity.ErrEmailRegistered)
		assert.Equal(t, "Email already registered", err.Error())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("race on unique index maps to duplicate", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("ExistsByEmail", ctx, "test@example.com").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := svc.Register(ctx, RegisterRequest{Name: "Test User", Email: "test@example.com", Password: "testpassword"})

		assert.ErrorIs(t, err, identity.ErrEmailRegistered)
	})

	t.Run("admin flag ignored unless signup allows it", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("ExistsByEmail", ctx, "admin@example.com").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		resp, err := svc.Register(ctx, RegisterRequest{Name: "Admin", Email: "admin@example.com", Password: "adminpassword", IsSuperAdmin: true})

		require.NoError(t, err)
		assert.False(t, resp.IsSuperAdmin)
	})

	t.Run("admin flag honored when signup allows it", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{AllowAdminSignup: true})
		repo.On("ExistsByEmail", ctx, "admin@example.com").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		resp, err := svc.Register(ctx, RegisterRequest{Name: "Admin", Email: "admin@example.com", Password: "adminpassword", IsSuperAdmin: true})

		require.NoError(t, err)
		assert.True(t, resp.IsSuperAdmin)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := mustUser(t, "test@example.com", false)

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)

		tokens, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "testpassword"})

		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, "bearer", tokens.TokenType)
		assert.InDelta(t, 1800, tokens.ExpiresIn, 2)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)

		_, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "wrongpassword"})

		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
		assert.Equal(t, "Incorrect email or password", err.Error())
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "testpassword"})

		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	ctx := context.Background()
	user := mustUser(t, "test@example.com", true)
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo, AuthServiceConfig{})
	repo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)

	tokens, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "testpassword"})
	require.NoError(t, err)

	principal, claims, err := svc.Authenticate(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.True(t, principal.IsSuperAdmin)

	require.NoError(t, svc.Logout(ctx, LogoutInput{
		UserID:       user.ID,
		AccessJTI:    claims.ID,
		AccessTTL:    claims.GetRemainingTTL(),
		RefreshToken: tokens.RefreshToken,
	}))

	_, _, err = svc.Authenticate(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_Authenticate_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		svc, _ := newTestAuthService(new(MockUserRepository), AuthServiceConfig{})

		_, _, err := svc.Authenticate(ctx, "not-a-token")

		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		user := mustUser(t, "gone@example.com", false)
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("FindByEmail", ctx, "gone@example.com").Return(user, nil)
		repo.On("FindByID", ctx, user.ID).Return(nil, shared.ErrNotFound)

		tokens, err := svc.Login(ctx, LoginRequest{Email: "gone@example.com", Password: "testpassword"})
		require.NoError(t, err)

		_, _, err = svc.Authenticate(ctx, tokens.AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	user := mustUser(t, "test@example.com", false)
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo, AuthServiceConfig{})
	repo.On("FindByEmail", ctx, "test@example.com").Return(user, nil)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)

	tokens, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "testpassword"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	// rotated tokens cannot be replayed
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	user := mustUser(t, "test@example.com", false)
	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo, AuthServiceConfig{})
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	missing := uuid.New()
	repo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	resp, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, resp.Email)

	_, err = svc.Me(ctx, missing)
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestAuthService_BootstrapAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing admin", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("FindByEmail", ctx, "root@example.com").Return(nil, shared.ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.IsSuperAdmin && u.Email == "root@example.com"
		})).Return(nil)

		require.NoError(t, svc.BootstrapAdmin(ctx, "Root", "Root@example.com", "rootpassword"))
		repo.AssertExpectations(t)
	})

	t.Run("promotes existing user", func(t *testing.T) {
		user := mustUser(t, "root@example.com", false)
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("FindByEmail", ctx, "root@example.com").Return(user, nil)
		repo.On("Update", ctx, user).Return(nil)

		require.NoError(t, svc.BootstrapAdmin(ctx, "Root", "root@example.com", "rootpassword"))
		assert.True(t, user.IsSuperAdmin)
		assert.True(t, user.VerifyPassword("testpassword"))
	})

	t.Run("existing admin is left alone", func(t *testing.T) {
		user := mustUser(t, "root@example.com", true)
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, AuthServiceConfig{})
		repo.On("FindByEmail", ctx, "root@example.com").Return(user, nil)

		require.NoError(t, svc.BootstrapAdmin(ctx, "Root", "root@example.com", "rootpassword"))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
