package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/erp/invoicing/internal/infrastructure/cache"
	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader carries the client chosen key for a POST request
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a response served from the store
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255
	defaultIdempotencyTTL   = 24 * time.Hour
)

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store  cache.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// responseRecorder copies everything the handler writes
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a POST repeats an
// Idempotency-Key. Keys are scoped to the authenticated user and the route, so
// it must run after JWT authentication. A key reused with a different body is
// rejected. Server errors, panics and empty responses release the key, and store
// failures let the request through unguarded.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		header := c.GetHeader(IdempotencyKeyHeader)
		if c.Request.Method != http.MethodPost || header == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(header) > maxIdempotencyKeyLength {
			HandleInvalidParam(c, IdempotencyKeyHeader, "must be at most 255 characters")
			return
		}

		raw, err := c.GetRawData()
		if err != nil {
			abortUnreadableBody(c, err)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		fingerprint := bodyFingerprint(raw)

		ctx := c.Request.Context()
		key := GetJWTUserID(c).String() + ":" + c.FullPath() + ":" + header

		stored, err := cfg.Store.Lookup(ctx, key)
		if err != nil {
			log.Warn("Idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}
		if stored != nil {
			if stored.Fingerprint != "" && stored.Fingerprint != fingerprint {
				HandleInvalidParam(c, IdempotencyKeyHeader, "was already used with a different request body")
				return
			}
			c.Header(IdempotentReplayHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		reserved, err := cfg.Store.Reserve(ctx, key, ttl)
		if err != nil {
			log.Warn("Idempotency reservation failed", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeConflict,
				"A request with this idempotency key is already in progress",
				c.GetString(logger.GinRequestIDKey),
			))
			return
		}

		release := func() {
			if err := cfg.Store.Release(ctx, key); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		defer func() {
			c.Writer = recorder.ResponseWriter
			if r := recover(); r != nil {
				release()
				panic(r)
			}

			status := recorder.Status()
			if status >= http.StatusInternalServerError || !recorder.Written() {
				release()
				return
			}
			resp := cache.StoredResponse{
				Status:      status,
				ContentType: recorder.Header().Get("Content-Type"),
				Body:        recorder.body.Bytes(),
				Fingerprint: fingerprint,
			}
			if err := cfg.Store.Complete(ctx, key, resp, ttl); err != nil {
				log.Warn("Failed to store idempotent response", zap.Error(err))
			}
		}()

		c.Next()
	}
}

func bodyFingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func abortUnreadableBody(c *gin.Context, err error) {
	requestID := c.GetString(logger.GinRequestIDKey)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
			dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size", requestID))
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest, "Failed to read request body", requestID))
}
