package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	JWTPrincipalKey = "jwt_principal"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// Authenticator resolves a bearer token to the calling principal
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (access.Principal, *auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// Authenticator validates the token and loads the caller
	Authenticator Authenticator
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(authenticator Authenticator, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		Authenticator: authenticator,
		Logger:        log,
	})
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			handleAuthError(c, cfg, shared.ErrUnauthorized, "Not authenticated")
			return
		}

		principal, claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "")
			return
		}

		userID := principal.UserID.String()
		c.Set(JWTClaimsKey, claims)
		c.Set(JWTPrincipalKey, principal)
		c.Set(logger.GinUserIDKey, userID)

		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), userID)
		c.Request = c.Request.WithContext(ctx)

		cfg.Logger.Debug("JWT authentication successful",
			zap.String("user_id", userID),
			zap.Bool("is_super_admin", principal.IsSuperAdmin),
		)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if len(header) < len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(BearerPrefix):])
	return token, token != ""
}

// handleAuthError answers 401 with the error envelope. Non-domain errors are
// store failures and answer 500.
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, fallback string) {
	requestID := c.GetString(logger.GinRequestIDKey)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		cfg.Logger.Error("Authentication lookup failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
		return
	}

	message := domainErr.Message
	if fallback != "" {
		message = fallback
	}
	cfg.Logger.Warn("JWT authentication failed",
		zap.String("reason", domainErr.Message),
		zap.String("path", c.Request.URL.Path),
	)

	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, requestID))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetPrincipal retrieves the authenticated caller from gin.Context
func GetPrincipal(c *gin.Context) (access.Principal, bool) {
	if p, exists := c.Get(JWTPrincipalKey); exists {
		if principal, ok := p.(access.Principal); ok {
			return principal, true
		}
	}
	return access.Principal{}, false
}

// GetJWTUserID retrieves the authenticated user ID, uuid.Nil when unauthenticated
func GetJWTUserID(c *gin.Context) uuid.UUID {
	principal, _ := GetPrincipal(c)
	return principal.UserID
}
