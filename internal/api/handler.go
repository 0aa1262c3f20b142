package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace-service/internal/models"
	"marketplace-service/internal/service"
	"marketplace-service/internal/util"
)

// walletTokenHeader carries the wallet session token on wallet-gated
// requests.
const walletTokenHeader = "X-Wallet-Token"

// Handler contains HTTP handlers
type Handler struct {
	authService    *service.AuthService
	catalogService *service.CatalogService
	cartService    *service.CartService
	orderService   *service.OrderService
	walletService  *service.WalletService
	reviewService  *service.ReviewService
	jwtSecret      []byte
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *service.AuthService,
	catalogService *service.CatalogService,
	cartService *service.CartService,
	orderService *service.OrderService,
	walletService *service.WalletService,
	reviewService *service.ReviewService,
	jwtSecret []byte,
) *Handler {
	return &Handler{
		authService:    authService,
		catalogService: catalogService,
		cartService:    cartService,
		orderService:   orderService,
		walletService:  walletService,
		reviewService:  reviewService,
		jwtSecret:      jwtSecret,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register/customer", h.registerCustomer)
		v1.POST("/auth/register/worker", h.registerWorker)
		v1.POST("/auth/login", h.login)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/products/:id/testimonies", h.listProductTestimonies)
	}

	authed := v1.Group("")
	authed.Use(authMiddleware(h.jwtSecret))
	{
		customer := authed.Group("", requireRole(models.RoleCustomer))
		{
			customer.GET("/cart", h.viewCart)
			customer.DELETE("/cart", h.removeCart)
			customer.POST("/cart/lines", h.addCartLine)
			customer.PUT("/cart/lines/:id", h.editCartLine)
			customer.DELETE("/cart/lines/:id", h.removeCartLine)
			customer.POST("/cart/checkout", h.checkout)

			customer.GET("/orders", h.listCustomerOrders)
			customer.POST("/orders/:id/cancel", h.cancelOrder)
			customer.POST("/orders/:id/pay", h.payOrder)

			customer.POST("/reviews", h.createReview)
			customer.GET("/reviews", h.listReviews)
			customer.PUT("/reviews/:id", h.updateReview)
			customer.DELETE("/reviews/:id", h.deleteReview)

			customer.POST("/fraud-reports", h.createFraudReport)
			customer.GET("/fraud-reports", h.listFraudReports)
			customer.PUT("/fraud-reports/:id", h.updateFraudReport)
			customer.DELETE("/fraud-reports/:id", h.deleteFraudReport)

			customer.POST("/testimonies", h.createTestimony)
			customer.GET("/testimonies", h.listTestimonies)
			customer.PUT("/testimonies/:id", h.updateTestimony)
			customer.DELETE("/testimonies/:id", h.deleteTestimony)
		}

		worker := authed.Group("/worker", requireRole(models.RoleWorker))
		{
			worker.GET("/profile", h.workerProfile)
			worker.PUT("/profile", h.updateWorkerProfile)

			worker.GET("/orders", h.listWorkerOrders)
			worker.GET("/orders/available", h.listAvailableOrders)
			worker.POST("/orders/:id/take", h.takeOrder)
			worker.POST("/orders/:id/complete", h.completeOrder)
		}

		admin := authed.Group("/admin", requireRole(models.RoleAdmin))
		{
			admin.GET("/orders", h.listAllOrders)
			admin.POST("/orders/:id/advance", h.advanceOrder)
			admin.GET("/orders/:id/events", h.orderAuditTrail)

			admin.POST("/products", h.createProduct)
			admin.PUT("/products/:id", h.updateProduct)
			admin.DELETE("/products/:id", h.deleteProduct)
		}

		authed.GET("/orders/:id", h.orderDetail)

		// workers hold wallets too, the delivery fee lands there
		authed.POST("/wallet", h.registerWallet)
		authed.POST("/wallet/login", h.walletLogin)
		authed.POST("/wallet/logout", h.walletLogout)
		authed.GET("/wallet", h.showWallet)
		authed.POST("/wallet/topup", h.topUpWallet)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// writeError maps domain errors onto HTTP statuses with a {message}
// body.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrOutOfStock),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInvalidPIN):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, models.ErrWalletLocked):
		status = http.StatusLocked
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware records HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
