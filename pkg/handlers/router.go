package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/greenmart/greenmart-backend/pkg/config"
	"github.com/sirupsen/logrus"
)

// NewRouter serves the API both under /api and at the root, where the storefront calls it.
func NewRouter(engine *gin.Engine, cfg config.Config, log logrus.FieldLogger, health *HealthHandler, trackingHandler *TrackingHandler, voucherHandler *VoucherHandler) {
	// recovery stays outermost so panics in the other middleware are caught too
	engine.Use(Recovery(log))
	engine.Use(CORS(cfg.CORS))
	engine.Use(RequestLogger(log))

	engine.GET("/health", health.Check)

	registerRoutes(engine.Group("/api"), trackingHandler, voucherHandler)
	registerRoutes(&engine.RouterGroup, trackingHandler, voucherHandler)
}

func registerRoutes(rg *gin.RouterGroup, trackingHandler *TrackingHandler, voucherHandler *VoucherHandler) {
	orderTracking := rg.Group("/order-tracking")
	{
		orderTracking.POST("", trackingHandler.Create)
		orderTracking.POST("/", trackingHandler.Create)
		orderTracking.GET("/:orderId", trackingHandler.History)
		orderTracking.PUT("/:id", trackingHandler.Update)
		orderTracking.DELETE("/:id", trackingHandler.Delete)
	}

	vouchers := rg.Group("/users/:userId/vouchers")
	{
		vouchers.GET("", voucherHandler.Get)
		vouchers.POST("/:voucherId", voucherHandler.Redeem)
		vouchers.DELETE("/:voucherId", voucherHandler.Release)
	}
}
