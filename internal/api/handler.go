package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"retail-api/internal/apperr"
	"retail-api/internal/auth"
	"retail-api/internal/service"
	"retail-api/internal/store"
	"retail-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	authService  *service.AuthService
	orderService *service.OrderService
	store        *store.Store
	tokens       *auth.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *service.AuthService,
	orderService *service.OrderService,
	store *store.Store,
	tokens *auth.Service,
) *Handler {
	return &Handler{
		authService:  authService,
		orderService: orderService,
		store:        store,
		tokens:       tokens,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh-token", h.refreshToken)
	}

	clients := router.Group("/clients")
	{
		clients.GET("", h.listClients)
		clients.GET("/:id", h.getClient)
		clients.POST("", h.createClient)
		clients.PUT("/:id", h.updateClient)
		clients.DELETE("/:id", h.deleteClient)
	}

	produtos := router.Group("/produtos", h.authMiddleware())
	{
		produtos.GET("", h.listProducts)
		produtos.GET("/:id", h.getProduct)
		produtos.POST("", h.createProduct)
		produtos.PUT("/:id", h.updateProduct)
		produtos.DELETE("/:id", h.deleteProduct)
	}

	pedidos := router.Group("/pedidos", h.authMiddleware())
	{
		pedidos.GET("", h.listOrders)
		pedidos.GET("/:id", h.getOrder)
		pedidos.POST("", h.createOrder)
		pedidos.PUT("/:id", h.updateOrder)
		pedidos.DELETE("/:id", h.deleteOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// authMiddleware validates the bearer token on every request and puts
// the authenticated username into the request context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Token de autenticação não informado!",
			})
			return
		}

		subject, err := h.tokens.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": apperr.Detail(err),
			})
			return
		}

		c.Set("usuario", subject)
		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// writeError maps an application error to its HTTP status. This is the
// single mapping point for the whole API.
func writeError(c *gin.Context, err error) {
	var status int
	switch apperr.KindOf(err) {
	case apperr.KindInvalidRequest:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindUnavailable, apperr.KindInsufficientStock:
		// Historical convention of this API; see DESIGN.md.
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": apperr.Detail(err)})
}

// pagination reads limit/offset query params with the API defaults
func pagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// pathID parses the numeric {id} path parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido!"})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
