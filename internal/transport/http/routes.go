package httpt

import (
	"net/http"

	_ "bloomshop/docs" // for swagger

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Bloomshop Order Service API
// @version         1.0
// @description     API оформления и подтверждения оплаты заказов
// @contact.name    API Support
// @contact.email   support@example.com
// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https
func (h *OrderHandler) setupRoutes() {
	h.router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	api := h.router.Group("/api/v1")
	{
		orders := api.Group("/orders")
		{
			orders.POST("", h.createOrderHandler)
			orders.GET("/:order_uid", h.getOrderHandler)
			orders.GET("/:order_uid/status", h.getOrderStatusHandler)
			orders.POST("/:order_uid/confirm", h.confirmPaymentHandler)
			orders.POST("/:order_uid/cancel", h.cancelOrderHandler)
		}

		api.GET("/zones", h.listZonesHandler)
		api.POST("/payments/webhook", h.paymentWebhookHandler)
	}

	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
