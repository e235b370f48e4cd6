package identity

import (
	"context"
	"errors"
	"time"

	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/domain/identity"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Token errors surfaced to clients
var (
	ErrTokenExpired    = shared.NewDomainError("UNAUTHORIZED", "Token has expired")
	ErrTokenInvalid    = shared.NewDomainError("UNAUTHORIZED", "Could not validate credentials")
	ErrTokenMaxRefresh = shared.NewDomainError("UNAUTHORIZED", "Maximum token refresh count exceeded. Please log in again")
	ErrTokenRevoked    = shared.NewDomainError("UNAUTHORIZED", "Token has been revoked")
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// AllowAdminSignup honors is_super_admin on public registration
	AllowAdminSignup bool
}

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	metrics    *telemetry.BusinessMetrics
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	metrics *telemetry.BusinessMetrics,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		metrics:    metrics,
		config:     config,
		logger:     logger,
	}
}

// Register creates a new account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	email := identity.NormalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, identity.ErrEmailRegistered
	}

	isSuperAdmin := req.IsSuperAdmin && s.config.AllowAdminSignup
	if req.IsSuperAdmin && !isSuperAdmin {
		s.logger.Warn("Ignoring is_super_admin on public registration", zap.String("email", email))
	}

	user, err := identity.NewUser(req.Name, email, req.Password, isSuperAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, identity.ErrEmailRegistered
		}
		return nil, err
	}

	s.metrics.RecordUserRegistered(ctx)
	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_super_admin", user.IsSuperAdmin))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Login authenticates a user by email and password and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.metrics.RecordLogin(ctx, false)
		s.logger.Warn("Login failed", zap.String("reason", "unknown email"))
		return nil, identity.ErrInvalidCredentials
	}

	if !user.VerifyPassword(req.Password) {
		s.metrics.RecordLogin(ctx, false)
		s.logger.Warn("Login failed",
			zap.String("reason", "wrong password"),
			zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}

	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	s.metrics.RecordLogin(ctx, true)
	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return s.toTokenResponse(pair), nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, tokenInput(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return s.toTokenResponse(pair), nil
}

// Logout revokes the caller's access token and, when supplied, its refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.AccessJTI != "" {
		if err := s.blacklist.Revoke(ctx, input.AccessJTI, input.AccessTTL); err != nil {
			return err
		}
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && claims.UserID == input.UserID.String() {
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Authenticate validates an access token and resolves the caller from the
// current user record, so privilege changes apply without re-login.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (access.Principal, *auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return access.Principal{}, nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return access.Principal{}, nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return access.Principal{}, nil, ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return access.Principal{}, nil, ErrTokenInvalid
		}
		return access.Principal{}, nil, err
	}

	return access.Principal{UserID: user.ID, IsSuperAdmin: user.IsSuperAdmin}, claims, nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// BootstrapAdmin makes sure a super-admin account with the given email exists.
// An existing account is promoted, its password is left unchanged.
func (s *AuthService) BootstrapAdmin(ctx context.Context, name, email, password string) error {
	email = identity.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsSuperAdmin {
			return nil
		}
		user.SetSuperAdmin(true)
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		s.logger.Info("Promoted bootstrap admin", zap.String("user_id", user.ID.String()))
		return nil
	case !errors.Is(err, shared.ErrNotFound):
		return err
	}

	user, err = identity.NewUser(name, email, password, true)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("Created bootstrap admin", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (s *AuthService) toTokenResponse(pair *auth.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(time.Until(pair.AccessTokenExpiresAt).Round(time.Second).Seconds()),
	}
}

func tokenInput(user *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:       user.ID,
		Email:        user.Email,
		IsSuperAdmin: user.IsSuperAdmin,
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}
