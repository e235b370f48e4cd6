package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appidentity "github.com/erp/invoicing/internal/application/identity"
	appinvoicing "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/domain/identity"
	"github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/cache"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/erp/invoicing/internal/infrastructure/persistence"
	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/erp/invoicing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"
)

func init() {
	identity.BcryptCost = bcrypt.MinCost
	middleware.SetupValidator()
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
		Skip  int   `json:"skip"`
		Limit int   `json:"limit"`
	} `json:"meta"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(context.Background()))

	log := zap.NewNop()
	policy := access.DefaultPolicy()
	blacklist := auth.NewInMemoryTokenBlacklist()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-with-enough-length",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "invoicing-test",
		MaxRefreshCount:        5,
	})

	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, nil,
		appidentity.AuthServiceConfig{AllowAdminSignup: true}, log)
	userService := appidentity.NewUserService(userRepo, txScope.Identity(), policy, blacklist, time.Hour, log)
	customerService := appinvoicing.NewCustomerService(customerRepo, txScope, policy, log)
	invoiceService := appinvoicing.NewInvoiceService(invoiceRepo, customerRepo, txScope, policy, nil, log)
	paymentService := appinvoicing.NewPaymentService(paymentRepo, invoiceRepo, txScope, policy, nil, log)

	prom := middleware.NewPrometheusMetrics("invoicing")
	idempotencyStore := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotencyStore.Close() })
	engine := NewEngine(EngineConfig{
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		ServiceName: "invoicing-test",
		Prometheus:  prom,
		Logger:      log,
	})
	RegisterAPI(engine, Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Customer: handler.NewCustomerHandler(customerService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Payment:  handler.NewPaymentHandler(paymentService),
		System:   handler.NewSystemHandler("Invoice Management API", "1.0.0", db).WithDocs("/docs", "/redoc"),
	}, Guards{
		Authn:       middleware.JWTAuthMiddleware(authService, log),
		Idempotency: middleware.Idempotency(middleware.IdempotencyConfig{Store: idempotencyStore, Logger: log}),
		Metrics:     prom.Handler(),
		Docs:        middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: true}, nil),
	})

	return &testAPI{t: t, engine: engine}
}

// do sends a request. body may be a raw JSON string or a value to marshal.
func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.doWithHeaders(method, path, token, body, nil)
}

func (a *testAPI) doWithHeaders(method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

// signup registers an account and returns its id and access token
func (a *testAPI) signup(email string, admin bool) (string, string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "User " + email, "email": email, "password": "password123", "is_super_admin": admin,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var user appidentity.UserResponse
	decode(a.t, w, &user)

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var tokens appidentity.TokenResponse
	decode(a.t, w, &tokens)
	return user.ID.String(), tokens.AccessToken
}

func (a *testAPI) createCustomer(token, name string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/customers", token, gin.H{"name": name, "email": strings.ToLower(name) + "@example.com"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var customer appinvoicing.CustomerResponse
	decode(a.t, w, &customer)
	return customer.ID.String()
}

func TestSystemEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info handler.APIInfoResponse
	decode(t, w, &info)
	assert.Equal(t, "Invoice Management API", info.Message)
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "/docs", info.Docs)
	assert.Equal(t, "/redoc", info.Redoc)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health handler.HealthResponse
	decode(t, w, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "up", health.Database)

	w = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invoicing_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/health"`)
}

func TestDocsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var doc struct {
		Swagger  string                     `json:"swagger"`
		BasePath string                     `json:"basePath"`
		Info     struct{ Title string }     `json:"info"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Equal(t, "Invoice Management API", doc.Info.Title)
	for _, path := range []string{"/auth/login", "/customers", "/invoices/{id}/items", "/invoices/items/{item_id}", "/payments/{id}"} {
		assert.Contains(t, doc.Paths, path)
	}

	w = api.do(http.MethodGet, "/swagger/index.html", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")

	w = api.do(http.MethodGet, "/docs", "", nil)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/swagger/index.html", w.Header().Get("Location"))

	w = api.do(http.MethodGet, "/redoc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `spec-url="/swagger/doc.json"`)
}

func TestDocsRequireAuth(t *testing.T) {
	engine := gin.New()
	authn := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
		}
	}
	registerDocs(engine, middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: true, RequireAuth: true}, authn))

	for _, path := range []string{"/swagger/doc.json", "/docs", "/redoc"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	t.Run("duplicate registration", func(t *testing.T) {
		api.signup("dup@example.com", false)
		w := api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"name": "Again", "email": "DUP@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w, nil)
		assert.Equal(t, "ERR_EMAIL_REGISTERED", env.Error.Code)
		assert.Equal(t, "Email already registered", env.Error.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "dup@example.com", "password": "nope-nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decode(t, w, nil)
		assert.Equal(t, "Incorrect email or password", env.Error.Message)
	})

	t.Run("validation failure", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "X", "email": "not-an-email", "password": "short"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w, nil)
		assert.Equal(t, "ERR_VALIDATION", env.Error.Code)
		fields := make([]string, 0, len(env.Error.Details))
		for _, d := range env.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"email", "password"}, fields)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "ERR_INVALID_JSON", decode(t, w, nil).Error.Code)
	})

	t.Run("me, refresh and logout", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Me", "email": "me@example.com", "password": "password123"})
		w = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "me@example.com", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code)
		var tokens appidentity.TokenResponse
		decode(t, w, &tokens)
		assert.Equal(t, "bearer", tokens.TokenType)
		assert.Positive(t, tokens.ExpiresIn)

		w = api.do(http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me appidentity.UserResponse
		decode(t, w, &me)
		assert.Equal(t, "me@example.com", me.Email)

		w = api.do(http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": tokens.RefreshToken})
		require.Equal(t, http.StatusOK, w.Code)
		var refreshed appidentity.TokenResponse
		decode(t, w, &refreshed)
		assert.NotEmpty(t, refreshed.AccessToken)

		w = api.do(http.MethodPost, "/api/v1/auth/logout", refreshed.AccessToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = api.do(http.MethodGet, "/api/v1/auth/me", refreshed.AccessToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})
}

func TestInvoiceLifecycle(t *testing.T) {
	api := newTestAPI(t)
	_, alice := api.signup("alice@example.com", false)
	_, bob := api.signup("bob@example.com", false)
	_, admin := api.signup("admin@example.com", true)

	customerID := api.createCustomer(alice, "Acme")

	w := api.do(http.MethodPost, "/api/v1/invoices", alice, `{
		"customer_id": "`+customerID+`",
		"items": [
			{"description": "Widget", "quantity": 2, "unit_price": 10.50},
			{"description": "Setup", "unit_price": 4.5}
		]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invoice appinvoicing.InvoiceResponse
	decode(t, w, &invoice)
	assert.Equal(t, "25.5", invoice.TotalAmount.String())
	assert.Equal(t, "draft", invoice.Status)
	assert.False(t, invoice.IsPaid)
	require.Len(t, invoice.Items, 2)
	require.NotNil(t, invoice.Customer)
	assert.Equal(t, "Acme", invoice.Customer.Name)
	assert.Contains(t, w.Body.String(), `"total_amount":25.5`)

	invoicePath := "/api/v1/invoices/" + invoice.ID.String()

	t.Run("other users are denied", func(t *testing.T) {
		w := api.do(http.MethodGet, invoicePath, bob, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "ERR_FORBIDDEN", decode(t, w, nil).Error.Code)

		w = api.do(http.MethodGet, "/api/v1/invoices", bob, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []appinvoicing.InvoiceResponse
		env := decode(t, w, &list)
		assert.Empty(t, list)
		assert.EqualValues(t, 0, env.Meta.Total)
	})

	t.Run("super-admin sees everything", func(t *testing.T) {
		w := api.do(http.MethodGet, invoicePath, admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = api.do(http.MethodGet, "/api/v1/invoices?skip=0&limit=10", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []appinvoicing.InvoiceResponse
		env := decode(t, w, &list)
		assert.Len(t, list, 1)
		assert.Equal(t, 10, env.Meta.Limit)
	})

	t.Run("items adjust the total", func(t *testing.T) {
		w := api.do(http.MethodPost, invoicePath+"/items", alice, `{"description": "Extra", "quantity": 3, "unit_price": 1.5}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var item appinvoicing.ItemResponse
		decode(t, w, &item)
		assert.Equal(t, "4.5", item.Total.String())

		w = api.do(http.MethodPut, "/api/v1/invoices/items/"+item.ID.String(), alice, `{"quantity": 1}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = api.do(http.MethodGet, invoicePath, alice, nil)
		decode(t, w, &invoice)
		assert.Equal(t, "27", invoice.TotalAmount.String())

		w = api.do(http.MethodDelete, "/api/v1/invoices/items/"+item.ID.String(), bob, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = api.do(http.MethodDelete, "/api/v1/invoices/items/"+item.ID.String(), alice, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = api.do(http.MethodGet, invoicePath, alice, nil)
		decode(t, w, &invoice)
		assert.Equal(t, "25.5", invoice.TotalAmount.String())
	})

	t.Run("payments mark the invoice paid", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/payments", alice, `{
			"invoice_id": "`+invoice.ID.String()+`", "amount": 20, "method": "cash", "status": "completed"
		}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var first appinvoicing.PaymentResponse
		decode(t, w, &first)
		require.NotNil(t, first.Invoice)
		assert.False(t, first.Invoice.IsPaid)

		w = api.do(http.MethodPost, "/api/v1/payments", alice, `{
			"invoice_id": "`+invoice.ID.String()+`", "amount": 5.5, "method": "bank_transfer", "status": "completed"
		}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var second appinvoicing.PaymentResponse
		decode(t, w, &second)
		assert.True(t, second.Invoice.IsPaid)

		w = api.do(http.MethodGet, "/api/v1/payments?invoice_id="+invoice.ID.String(), alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var payments []appinvoicing.PaymentResponse
		decode(t, w, &payments)
		assert.Len(t, payments, 2)

		w = api.do(http.MethodGet, "/api/v1/payments?invoice_id=nope", alice, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = api.do(http.MethodPost, "/api/v1/payments", bob, `{
			"invoice_id": "`+invoice.ID.String()+`", "amount": 1, "method": "cash"
		}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = api.do(http.MethodDelete, "/api/v1/payments/"+first.ID.String(), alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var msg struct {
			Message string `json:"message"`
		}
		decode(t, w, &msg)
		assert.Equal(t, "Payment deleted successfully", msg.Message)
	})

	t.Run("customer in use cannot be deleted", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/api/v1/customers/"+customerID, alice, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete invoice then customer", func(t *testing.T) {
		w := api.do(http.MethodDelete, invoicePath, alice, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = api.do(http.MethodGet, invoicePath, alice, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decode(t, w, nil)
		assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
		assert.Equal(t, "Invoice not found", env.Error.Message)

		w = api.do(http.MethodDelete, "/api/v1/customers/"+customerID, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var msg struct {
			Message string `json:"message"`
		}
		decode(t, w, &msg)
		assert.Equal(t, "Customer deleted successfully", msg.Message)
	})
}

func TestInvalidPathParameter(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signup("param@example.com", false)

	w := api.do(http.MethodGet, "/api/v1/invoices/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w, nil)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "id", env.Error.Details[0].Field)
}

func TestUserManagement(t *testing.T) {
	api := newTestAPI(t)
	aliceID, alice := api.signup("alice@example.com", false)
	bobID, bob := api.signup("bob@example.com", false)
	_, admin := api.signup("root@example.com", true)

	w := api.do(http.MethodGet, "/api/v1/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []appidentity.UserResponse
	env := decode(t, w, &users)
	assert.Len(t, users, 3)
	assert.EqualValues(t, 3, env.Meta.Total)
	assert.Equal(t, 100, env.Meta.Limit)

	w = api.do(http.MethodGet, "/api/v1/users/"+bobID, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPut, "/api/v1/users/"+aliceID, alice, gin.H{"name": "Alice A."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated appidentity.UserResponse
	decode(t, w, &updated)
	assert.Equal(t, "Alice A.", updated.Name)

	w = api.do(http.MethodPut, "/api/v1/users/"+aliceID, alice, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPut, "/api/v1/users/"+aliceID, alice, gin.H{"is_super_admin": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, "/api/v1/users/"+bobID, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodDelete, "/api/v1/users/"+bobID, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/v1/auth/me", bob, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdempotentCreate(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signup("retry@example.com", false)

	body := gin.H{"name": "Retry Co", "email": "retry-co@example.com"}
	headers := map[string]string{middleware.IdempotencyKeyHeader: "create-retry-co"}

	first := api.doWithHeaders(http.MethodPost, "/api/v1/customers", token, body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := api.doWithHeaders(http.MethodPost, "/api/v1/customers", token, body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotentReplayHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())

	w := api.do(http.MethodGet, "/api/v1/customers", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w, nil).Meta.Total)
}

func TestListSorting(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signup("sort@example.com", false)
	api.createCustomer(token, "Bravo")
	api.createCustomer(token, "Alpha")
	api.createCustomer(token, "Charlie")

	w := api.do(http.MethodGet, "/api/v1/customers?sort_by=name&sort_order=desc", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var customers []appinvoicing.CustomerResponse
	decode(t, w, &customers)
	require.Len(t, customers, 3)
	assert.Equal(t, "Charlie", customers[0].Name)
	assert.Equal(t, "Alpha", customers[2].Name)

	w = api.do(http.MethodGet, "/api/v1/customers?sort_order=sideways", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
