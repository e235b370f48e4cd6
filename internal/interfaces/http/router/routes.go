package router

import (
	"net/http"

	_ "github.com/erp/invoicing/docs"
	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	swaggerIndexPath = "/swagger/index.html"
	swaggerDocPath   = "/swagger/doc.json"
)

const redocPage = `<!DOCTYPE html>
<html>
<head>
<title>Invoice Management API</title>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
<redoc spec-url="` + swaggerDocPath + `"></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`

// Handlers bundles the HTTP handlers mounted by RegisterAPI
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Customer *handler.CustomerHandler
	Invoice  *handler.InvoiceHandler
	Payment  *handler.PaymentHandler
	System   *handler.SystemHandler
}

// Guards holds the route level middleware
type Guards struct {
	Authn       gin.HandlerFunc // required on every route except register, login and refresh
	Idempotency gin.HandlerFunc // optional, runs after Authn on resource groups
	Metrics     gin.HandlerFunc // optional /metrics handler
	Docs        gin.HandlerFunc // gates /swagger, /docs and /redoc; nil leaves them unmounted
}

func (g Guards) resource() []gin.HandlerFunc {
	if g.Idempotency == nil {
		return []gin.HandlerFunc{g.Authn}
	}
	return []gin.HandlerFunc{g.Authn, g.Idempotency}
}

// RegisterAPI mounts the system endpoints at the root and the versioned API.
func RegisterAPI(engine *gin.Engine, h Handlers, g Guards) {
	engine.GET("/", h.System.Root)
	engine.GET("/health", h.System.Health)
	if g.Metrics != nil {
		engine.GET("/metrics", g.Metrics)
	}
	if g.Docs != nil {
		registerDocs(engine, g.Docs)
	}
	authn := g.Authn

	r := NewRouter(engine, WithAPIVersion("v1"))

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.Refresh)
	authRoutes.POST("/logout", authn, h.Auth.Logout)
	authRoutes.GET("/me", authn, h.Auth.Me)

	userRoutes := NewDomainGroup("users", "/users").Use(g.resource()...)
	userRoutes.GET("", h.User.List)
	userRoutes.GET("/:id", h.User.Get)
	userRoutes.PUT("/:id", h.User.Update)
	userRoutes.DELETE("/:id", h.User.Delete)

	customerRoutes := NewDomainGroup("customers", "/customers").Use(g.resource()...)
	customerRoutes.POST("", h.Customer.Create)
	customerRoutes.GET("", h.Customer.List)
	customerRoutes.GET("/:id", h.Customer.Get)
	customerRoutes.PUT("/:id", h.Customer.Update)
	customerRoutes.DELETE("/:id", h.Customer.Delete)

	invoiceRoutes := NewDomainGroup("invoices", "/invoices").Use(g.resource()...)
	invoiceRoutes.POST("", h.Invoice.Create)
	invoiceRoutes.GET("", h.Invoice.List)
	invoiceRoutes.GET("/:id", h.Invoice.Get)
	invoiceRoutes.PUT("/:id", h.Invoice.Update)
	invoiceRoutes.DELETE("/:id", h.Invoice.Delete)
	invoiceRoutes.POST("/:id/items", h.Invoice.AddItem)
	invoiceRoutes.PUT("/items/:item_id", h.Invoice.UpdateItem)
	invoiceRoutes.DELETE("/items/:item_id", h.Invoice.DeleteItem)

	paymentRoutes := NewDomainGroup("payments", "/payments").Use(g.resource()...)
	paymentRoutes.POST("", h.Payment.Create)
	paymentRoutes.GET("", h.Payment.List)
	paymentRoutes.GET("/:id", h.Payment.Get)
	paymentRoutes.PUT("/:id", h.Payment.Update)
	paymentRoutes.DELETE("/:id", h.Payment.Delete)

	r.Register(authRoutes).
		Register(userRoutes).
		Register(customerRoutes).
		Register(invoiceRoutes).
		Register(paymentRoutes)
	r.Setup()
}

// registerDocs serves the Swagger UI and its document, with /docs and /redoc
// kept as the entry points older clients link to.
func registerDocs(engine *gin.Engine, guard gin.HandlerFunc) {
	engine.GET("/swagger/*any", guard, ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/docs", guard, func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, swaggerIndexPath)
	})
	engine.GET("/redoc", guard, func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(redocPage))
	})
}
