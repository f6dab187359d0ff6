package httpt

import (
	"bloomshop/internal/service"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc           *service.OrderService
	log           logger.Logger
	metrics       metric.HTTP
	webhookSecret string
	router        *gin.Engine
}

func NewOrderHandler(
	svc *service.OrderService,
	log logger.Logger,
	metrics metric.HTTP,
	webhookSecret string,
) *OrderHandler {
	h := &OrderHandler{
		svc:           svc,
		log:           log,
		metrics:       metrics,
		webhookSecret: webhookSecret,
	}

	router := gin.New()

	router.Use(h.requestIDMiddleware())
	router.Use(h.loggingMiddleware())
	router.Use(gin.Recovery())

	h.router = router

	h.setupRoutes()

	return h
}

func (h *OrderHandler) Engine() *gin.Engine {
	return h.router
}
