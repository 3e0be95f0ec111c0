package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"go.uber.org/zap"
)

// Handlers bundles the handlers the router wires up
type Handlers struct {
	Order      *handler.OrderHandler
	SubOrder   *handler.SubOrderHandler
	Case       *handler.CaseHandler
	Sla        *handler.SlaHandler
	Commission *handler.CommissionHandler
}

// New builds the gin engine with middleware and all routes registered
func New(log *zap.Logger, h Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")

	orders := api.Group("/orders")
	{
		orders.POST("", h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/confirm", h.Order.Confirm)
		orders.POST("/:id/payment-capture", h.Order.CapturePayment)
		orders.POST("/:id/complete", h.Order.Complete)
		orders.POST("/:id/cancel", h.Order.Cancel)
	}

	subOrders := api.Group("/sub-orders")
	{
		subOrders.GET("", h.SubOrder.List)
		subOrders.GET("/:id", h.SubOrder.Get)
		subOrders.POST("/:id/transition", h.SubOrder.Transition)
		subOrders.POST("/:id/override", h.SubOrder.Override)
		subOrders.POST("/:id/items/:itemId/transition", h.SubOrder.TransitionItem)
		subOrders.GET("/:id/shipping-history", h.SubOrder.ShippingHistory)
		subOrders.GET("/:id/commission", h.Commission.GetBySubOrder)
	}

	cases := api.Group("/cases")
	{
		cases.POST("", h.Case.Create)
		cases.GET("", h.Case.List)
		cases.GET("/:id", h.Case.Get)
		cases.POST("/:id/transition", h.Case.Transition)
		cases.POST("/:id/messages", h.Case.AddMessage)
		cases.GET("/:id/sla", h.Sla.GetTracking)
	}

	sla := api.Group("/sla")
	{
		sla.POST("/configurations", h.Sla.CreateConfiguration)
		sla.GET("/configurations", h.Sla.ListConfigurations)
		sla.DELETE("/configurations/:id", h.Sla.DeactivateConfiguration)
		sla.GET("/breached", h.Sla.ListBreached)
	}

	stores := api.Group("/stores")
	{
		stores.GET("/:storeId/sla-statistics", h.Sla.StoreStatistics)
		stores.GET("/:storeId/commission-summary", h.Commission.SellerSummary)
	}

	return engine
}
