package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"modulehost/internal/middleware"
	"modulehost/internal/model"
	"modulehost/internal/module"
	"modulehost/internal/repository"
	"modulehost/internal/schema"
)

// ModuleHandler binds the four contract operations of the single
// loaded module to HTTP. It holds the only reference to the instance
// once the host is serving.
type ModuleHandler struct {
	mod     module.Module
	logs    *LogWriter
	logRepo *repository.RequestLogRepository
}

// NewModuleHandler wires the handler. logs may be nil, in which case
// no audit rows are written.
func NewModuleHandler(mod module.Module, logs *LogWriter, logRepo *repository.RequestLogRepository) *ModuleHandler {
	return &ModuleHandler{mod: mod, logs: logs, logRepo: logRepo}
}

// Health returns the module's Health value verbatim. A backend outage
// is data (status=Unhealthy), never a transport error.
func (h *ModuleHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.mod.HealthCheck(c.Request.Context()))
}

// Capabilities always succeeds once the host is Ready.
func (h *ModuleHandler) Capabilities(c *gin.Context) {
	c.JSON(http.StatusOK, h.mod.Capabilities())
}

// Inference runs one request against the module. Malformed input is
// rejected before the module is reached and does not touch metrics;
// module failures surface as a 500 carrying the failure message.
func (h *ModuleHandler) Inference(c *gin.Context) {
	var in schema.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request: " + err.Error()})
		return
	}

	start := time.Now()
	out, err := h.mod.RunInference(c.Request.Context(), in)
	latency := time.Since(start)

	if err != nil {
		log.Warnf("inference failed: %v", err)
		h.record(c, model.RequestLog{
			Status:    model.RequestLogStatusError,
			LatencyMs: latency.Milliseconds(),
			ErrorText: err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	h.record(c, model.RequestLog{
		Status:           model.RequestLogStatusSuccess,
		LatencyMs:        latency.Milliseconds(),
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
	})
	c.JSON(http.StatusOK, out)
}

// Metrics reads the module's counters. Always succeeds once Ready.
func (h *ModuleHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.mod.Metrics())
}

// Requests lists recent audit rows, newest first.
func (h *ModuleHandler) Requests(c *gin.Context) {
	if h.logRepo == nil {
		c.JSON(http.StatusOK, gin.H{"requests": []model.RequestLog{}})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid limit"})
			return
		}
		limit = n
	}

	logs, err := h.logRepo.ListRecent(limit)
	if err != nil {
		log.Errorf("request log query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to query request logs"})
		return
	}
	if logs == nil {
		logs = []model.RequestLog{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": logs})
}

func (h *ModuleHandler) record(c *gin.Context, entry model.RequestLog) {
	if h.logs == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.RequestID = c.GetString(middleware.RequestIDKey)
	entry.CreatedAt = time.Now()
	h.logs.Write(entry)
}
