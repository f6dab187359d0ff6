package httpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bloomshop/internal/entity"
	"bloomshop/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h *OrderHandler) handleServiceError(c *gin.Context, err error, op string) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.ErrorLevel, op+" failed",
		logger.Any("error", err),
		logger.String("remote_addr", c.ClientIP()),
		logger.String("user_agent", c.Request.UserAgent()),
	)

	// The buyer never sees internal failure detail; the log line above
	// carries it.
	switch {
	case errors.Is(err, entity.ErrInvalidData):
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "Invalid order data. Check items, customer and delivery fields."},
		)
	case errors.Is(err, entity.ErrDataNotFound):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "order not found",
			logger.String("order_uid", c.Param("order_uid")),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, entity.ErrGatewayUnavailable):
		c.JSON(
			http.StatusBadGateway,
			gin.H{"error": "Payment service is temporarily unavailable. Please try again."},
		)
	case errors.Is(err, context.DeadlineExceeded):
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "request timeout",
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
	default:
		log.LogAttrs(c.Request.Context(), logger.ErrorLevel, "internal server error",
			logger.Any("error", err),
			logger.String("path", c.Request.URL.Path),
			logger.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal service error"})
	}
}

func (h *OrderHandler) handleBindError(c *gin.Context, op string, err error) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.WarnLevel, "malformed request body",
		logger.String("op", op),
		logger.Any("error", err),
		logger.String("remote_addr", c.ClientIP()),
	)

	c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request body"})
}

func (h *OrderHandler) handleInvalidUUID(c *gin.Context, op, value string) {
	log := h.log.Ctx(c.Request.Context())

	log.LogAttrs(c.Request.Context(), logger.WarnLevel, "invalid order UID format",
		logger.String("op", op),
		logger.String("value", value),
		logger.String("remote_addr", c.ClientIP()),
	)

	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order UID format"})
}

func bindWebhookBody(body []byte, req *PaymentWebhookRequest) error {
	if err := json.Unmarshal(body, req); err != nil {
		return fmt.Errorf("transport.bindWebhookBody: %w", err)
	}
	if req.OrderUID == "" {
		return fmt.Errorf("transport.bindWebhookBody: missing order_uid")
	}
	if req.Status != "success" && req.Status != "failure" {
		return fmt.Errorf("transport.bindWebhookBody: unexpected status %q", req.Status)
	}
	return nil
}
