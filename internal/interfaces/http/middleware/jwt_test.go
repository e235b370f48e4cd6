package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	principal access.Principal
	err       error
	gotToken  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (access.Principal, *auth.Claims, error) {
	s.gotToken = token
	if s.err != nil {
		return access.Principal{}, nil, s.err
	}
	return s.principal, &auth.Claims{UserID: s.principal.UserID.String()}, nil
}

func newJWTRouter(authn Authenticator, skip ...string) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{Authenticator: authn, SkipPaths: skip}))
	router.GET("/me", func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":     principal.UserID.String(),
			"gin_user_id": c.GetString(logger.GinUserIDKey),
			"ctx_user_id": logger.GetUserID(c.Request.Context()),
			"has_claims":  GetJWTClaims(c) != nil,
		})
	})
	router.GET("/public", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	authn := &stubAuthenticator{principal: access.Principal{UserID: userID}}
	router := newJWTRouter(authn)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "token-123", authn.gotToken)
	assert.JSONEq(t, `{"user_id":"`+userID.String()+`","gin_user_id":"`+userID.String()+`","ctx_user_id":"`+userID.String()+`","has_claims":true}`, w.Body.String())
}

func TestJWTAuthMiddleware_BearerPrefixIsCaseInsensitive(t *testing.T) {
	authn := &stubAuthenticator{principal: access.Principal{UserID: uuid.New()}}
	router := newJWTRouter(authn)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", authn.gotToken)
}

func TestJWTAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic dXNlcjpwYXNz",
		"empty token":  "Bearer   ",
	} {
		t.Run(name, func(t *testing.T) {
			router := newJWTRouter(&stubAuthenticator{})
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			resp := decodeEnvelope(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
			assert.Equal(t, "Not authenticated", resp.Error.Message)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestJWTAuthMiddleware_RejectedToken(t *testing.T) {
	authn := &stubAuthenticator{err: shared.NewDomainError("UNAUTHORIZED", "Token has been revoked")}
	router := newJWTRouter(authn)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has been revoked", decodeEnvelope(t, w).Error.Message)
}

func TestJWTAuthMiddleware_StoreFailureIsInternal(t *testing.T) {
	authn := &stubAuthenticator{err: errors.New("redis: connection refused")}
	router := newJWTRouter(authn)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrCodeInternal, decodeEnvelope(t, w).Error.Code)
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := newJWTRouter(&stubAuthenticator{}, "/public")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetJWTUserID_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, GetJWTUserID(c))
	assert.Nil(t, GetJWTClaims(c))
}
