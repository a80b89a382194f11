package router

import (
	"github.com/gin-gonic/gin"

	"modulehost/internal/handler"
	"modulehost/internal/middleware"
)

// Setup builds the engine with the host's network surface. Recovery is
// installed so a panicking plugin turns into a 500, never a dead host.
func Setup(h *handler.ModuleHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	r.GET("/health", h.Health)
	r.GET("/capabilities", h.Capabilities)
	r.POST("/inference", h.Inference)
	r.GET("/metrics", h.Metrics)
	r.GET("/requests", h.Requests)

	return r
}
