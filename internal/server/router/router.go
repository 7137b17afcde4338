package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(dashboard *handlers.DashboardHandler, orders *handlers.OrderHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.GET("/work-orders", dashboard.ListWorkOrders)
		api.GET("/work-orders/snapshot", dashboard.Snapshot)
		api.POST("/work-orders/search", dashboard.Search)
		api.GET("/users", dashboard.ListUsers)
		api.POST("/aql-audits", dashboard.SubmitAudit)
		api.POST("/aql-audits/blank", dashboard.CreateBlankAudit)

		api.POST("/tracking-orders/options", orders.ComponentOptions)
		api.POST("/tracking-orders/validate", orders.ValidateOrder)
		api.POST("/tracking-orders/parent-check", orders.CheckParent)
		api.POST("/tracking-orders/:name/cancel", orders.CancelOrder)
		api.GET("/reference-placeholder", orders.ReferencePlaceholder)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
