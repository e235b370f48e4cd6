package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupBody struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=5"`
	Quantity int    `json:"quantity"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req signupBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/items/:id", func(c *gin.Context) {
		HandleInvalidParam(c, "id", "Invalid UUID format")
	})
	return router
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	w := post(newValidationRouter(), `{"email":"invalid","name":"too long name"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Equal(t, "Must be at most 5 characters", fields["name"])
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := newValidationRouter()

	for _, body := range []string{`{"email":`, ``} {
		w := post(router, body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeEnvelope(t, w).Error.Code)
	}
}

func TestHandleValidationError_WrongType(t *testing.T) {
	w := post(newValidationRouter(), `{"email":"a@b.co","name":"ok","quantity":"three"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}

func TestHandleInvalidParam(t *testing.T) {
	w := httptest.NewRecorder()
	newValidationRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeEnvelope(t, w)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "id", resp.Error.Details[0].Field)
}
