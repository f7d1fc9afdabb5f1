package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/GriffinCanCode/AutoThinker/backend/internal/api/middleware"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/domain/blueprint"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/store"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	store     store.Store
	sanitizer *utils.Sanitizer
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	backend   string
	started   time.Time
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(st store.Store, backend string, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	return &Handlers{
		store:     st,
		sanitizer: utils.NewSanitizer(),
		metrics:   metrics,
		logger:    logging.OrNop(logger).Named("api"),
		backend:   backend,
		started:   time.Now(),
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	bp := r.Group("/blueprints")
	bp.GET("", h.ListBlueprints)
	bp.POST("", h.CreateBlueprint)
	bp.GET("/:id", h.GetBlueprint)
	bp.PUT("/:id", h.UpdateBlueprint)
	bp.DELETE("/:id", h.DeleteBlueprint)

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
		r.GET("/metrics/json", h.MetricsJSON)
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "AutoThinker Blueprint Store",
		"version": Version,
	})
}

// Health reports liveness and whether the store answers
func (h *Handlers) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	storeStatus := gin.H{"backend": h.backend, "reachable": true}

	if counter, ok := h.store.(store.Counter); ok {
		n, err := counter.Count(c.Request.Context())
		if err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
			storeStatus["reachable"] = false
			h.logger.Warn("Health check failed", zap.Error(err))
		} else {
			storeStatus["blueprints"] = n
		}
	}

	c.JSON(code, gin.H{
		"status":         status,
		"store":          storeStatus,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// ListBlueprints returns the collection in store order. An optional
// ?search= filters by name, case-insensitively.
func (h *Handlers) ListBlueprints(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	if len(search) > utils.MaxSearchLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search term too long"})
		return
	}

	items, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list", err)
		return
	}

	if search != "" {
		needle := strings.ToLower(search)
		filtered := make([]blueprint.Blueprint, 0, len(items))
		for _, bp := range items {
			if strings.Contains(strings.ToLower(bp.Name), needle) {
				filtered = append(filtered, bp)
			}
		}
		items = filtered
	}

	c.JSON(http.StatusOK, items)
}

// GetBlueprint returns one blueprint
func (h *Handlers) GetBlueprint(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	bp, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get", err)
		return
	}

	c.JSON(http.StatusOK, bp)
}

// CreateBlueprint stores a draft and returns it with its id
func (h *Handlers) CreateBlueprint(c *gin.Context) {
	var draft blueprint.Draft
	if !h.bind(c, &draft) {
		return
	}

	if err := utils.ValidateDraftLimits(draft); err != nil {
		h.fail(c, "create", err)
		return
	}
	h.sanitizer.Draft(&draft)

	bp, err := h.store.Create(c.Request.Context(), draft)
	if err != nil {
		h.fail(c, "create", err)
		return
	}

	c.Header("Location", "/blueprints/"+bp.ID)
	c.JSON(http.StatusCreated, bp)
}

// UpdateBlueprint applies a patch
func (h *Handlers) UpdateBlueprint(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var patch blueprint.Patch
	if !h.bind(c, &patch) {
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	if err := utils.ValidatePatchLimits(patch); err != nil {
		h.fail(c, "update", err)
		return
	}
	h.sanitizer.Patch(&patch)

	bp, err := h.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, "update", err)
		return
	}

	c.JSON(http.StatusOK, bp)
}

// DeleteBlueprint removes a blueprint. Unknown ids succeed.
func (h *Handlers) DeleteBlueprint(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil && !blueprint.IsNotFound(err) {
		h.fail(c, "delete", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MetricsJSON returns the metrics summary
func (h *Handlers) MetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

func (h *Handlers) pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := utils.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}

func (h *Handlers) bind(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxBodySize)
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

// fail maps a store or validation error onto a response
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	var verr *blueprint.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case blueprint.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Blueprint not found"})
	case c.Request.Context().Err() != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		h.logger.Error("Store operation failed",
			zap.String("op", op),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
