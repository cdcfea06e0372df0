package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inventory-sync-service/config"
	"inventory-sync-service/internal/models"
	"inventory-sync-service/internal/service"
	"inventory-sync-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SyncService is the orchestrator surface the trigger endpoints need.
type SyncService interface {
	Run(ctx context.Context, req service.SyncRequest) (*service.SyncSummary, error)
	History(ctx context.Context, storeID int64, limit int) ([]models.SyncRun, error)
	LatestSummary(ctx context.Context, storeID int64) (*service.SyncSummary, error)
}

// Handler contains HTTP handlers
type Handler struct {
	syncService SyncService
	auth        config.AuthConfig
}

// NewHandler creates a new HTTP handler
func NewHandler(syncService SyncService, auth config.AuthConfig) *Handler {
	return &Handler{
		syncService: syncService,
		auth:        auth,
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
	v1.Use(authMiddleware(h.auth))
	{
		v1.POST("/sync", h.triggerSync)
		v1.GET("/sync/history", h.syncHistory)
		v1.GET("/sync/latest", h.latestSync)
	}
}

// healthCheck handles liveness probes. No side effects.
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "inventory sync service is running",
		"timestamp": time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "ready",
		"timestamp": time.Now().Unix(),
	})
}

type syncRequestBody struct {
	StoreID  int64    `json:"store_id"`
	APIKey   string   `json:"api_key,omitempty"`
	Entities []string `json:"entities,omitempty"`
}

// triggerSync starts an orchestrator run and waits for its summary.
func (h *Handler) triggerSync(c *gin.Context) {
	var body syncRequestBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid request body",
				"details": err.Error(),
			})
			return
		}
	}

	storeID := body.StoreID
	if storeID == 0 {
		storeID, _ = strconv.ParseInt(c.Query("store_id"), 10, 64)
	}
	if storeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "store_id is required",
		})
		return
	}

	summary, err := h.syncService.Run(c.Request.Context(), service.SyncRequest{
		StoreID:  storeID,
		APIKey:   body.APIKey,
		Entities: body.Entities,
	})
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "A sync is already running for this store",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Sync run failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}

// syncHistory returns the most recent run summaries for a store.
func (h *Handler) syncHistory(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "store_id is required",
		})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	runs, err := h.syncService.History(c.Request.Context(), storeID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load sync history",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"runs":    runs,
	})
}

// latestSync returns the latest run summary for a store.
func (h *Handler) latestSync(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "store_id is required",
		})
		return
	}

	summary, err := h.syncService.LatestSummary(c.Request.Context(), storeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load latest sync summary",
			"details": err.Error(),
		})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "No sync has run for this store",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}

// authMiddleware accepts either the scheduler token header or a configured
// admin bearer token. Everything else is rejected before any sync work runs.
func authMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.SchedulerToken != "" && c.GetHeader("X-Scheduler-Token") == cfg.SchedulerToken {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimPrefix(auth, "Bearer ")
			for _, valid := range cfg.AdminTokens {
				if token == valid {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Unauthorized",
		})
	}
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
