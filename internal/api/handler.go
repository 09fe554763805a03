package api

import (
	"net/http"
	"strconv"
	"time"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/service"
	"warehouse-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Log limits requested by the client are clamped to this range.
const (
	minLogLimit     = 10
	maxLogLimit     = 500
	defaultLogLimit = 100
)

// Handler contains HTTP handlers
type Handler struct {
	warehouse *service.WarehouseService
}

// NewHandler creates a new HTTP handler
func NewHandler(warehouse *service.WarehouseService) *Handler {
	return &Handler{
		warehouse: warehouse,
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
	v1.POST("/login", h.login)

	authed := v1.Group("")
	authed.Use(auth.Middleware())
	{
		authed.GET("/shelves", h.listShelves)
		authed.POST("/shelves/:num/products", h.putProduct)
		authed.POST("/shelves/:num/clear", h.clearShelf)
		authed.GET("/search", h.search)
		authed.GET("/requests", h.listRequests)
		authed.POST("/requests", h.createRequest)
	}

	admin := authed.Group("/admin")
	admin.Use(auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/setup", h.setupShelves)
		admin.GET("/stats", h.stats)
		admin.GET("/logs", h.getLogs)
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

type loginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// login resolves a PIN to a session record. The session lives client-side
// only; every later call re-sends the PIN in a header.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	session, ok := auth.Login(req.PIN)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "unknown PIN",
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// listShelves returns every shelf with its contents, the rack-overview read
func (h *Handler) listShelves(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"shelves": h.warehouse.Shelves(),
	})
}

type putRequest struct {
	Product string `json:"product" binding:"required"`
	Qty     int    `json:"qty" binding:"required,min=1"`
}

// putProduct handles placing a product on a shelf
func (h *Handler) putProduct(c *gin.Context) {
	shelfNum, ok := shelfParam(c)
	if !ok {
		return
	}

	var req putRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result := h.warehouse.Put(c.Request.Context(), req.Product, shelfNum, req.Qty, c.GetString(auth.ContextPin))
	c.JSON(resultStatus(result), result)
}

// clearShelf handles emptying a shelf
func (h *Handler) clearShelf(c *gin.Context) {
	shelfNum, ok := shelfParam(c)
	if !ok {
		return
	}

	result := h.warehouse.ClearShelf(c.Request.Context(), shelfNum, c.GetString(auth.ContextPin))
	c.JSON(resultStatus(result), result)
}

// search handles product lookup across shelves
func (h *Handler) search(c *gin.Context) {
	product := c.Query("product")
	if product == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "product query parameter is required",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": h.warehouse.Search(product),
	})
}

// listRequests returns the mirrored recent restock requests
func (h *Handler) listRequests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"requests": h.warehouse.Requests(),
	})
}

type createRequestBody struct {
	Product string `json:"product" binding:"required"`
}

// createRequest handles raising a restock request
func (h *Handler) createRequest(c *gin.Context) {
	var req createRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result := h.warehouse.CreateRequest(c.Request.Context(), req.Product, c.GetString(auth.ContextPin))
	c.JSON(resultStatus(result), result)
}

type setupRequest struct {
	Count int `json:"count" binding:"required,min=1"`
}

// setupShelves provisions the shelf range. Re-running resets every shelf in
// range back to empty, stocked or not.
func (h *Handler) setupShelves(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result := h.warehouse.SetupShelves(c.Request.Context(), req.Count, c.GetString(auth.ContextPin))
	c.JSON(resultStatus(result), result)
}

// stats returns warehouse occupancy totals
func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.warehouse.Stats())
}

// getLogs returns the newest audit records, limit clamped to [10, 500]
func (h *Handler) getLogs(c *gin.Context) {
	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid limit",
			})
			return
		}
		limit = parsed
	}
	limit = clampLogLimit(limit)

	c.JSON(http.StatusOK, gin.H{
		"logs": h.warehouse.GetLogs(c.Request.Context(), limit),
	})
}

func clampLogLimit(limit int) int {
	if limit < minLogLimit {
		return minLogLimit
	}
	if limit > maxLogLimit {
		return maxLogLimit
	}
	return limit
}

func shelfParam(c *gin.Context) (int, bool) {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil || num <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shelf number",
		})
		return 0, false
	}
	return num, true
}

// Mutations report outcome in the result body; the status code only
// distinguishes accepted from rejected.
func resultStatus(result service.Result) int {
	if result.Success {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
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
