package httpt

import (
	"context"
	"net/http"
	"time"

	"bloomshop/internal/entity"
	"bloomshop/internal/gateway"
	"bloomshop/internal/service"
	"bloomshop/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	_defaultContextTimeout = 500 * time.Millisecond
	_checkoutTimeout       = 15 * time.Second
)

// @Summary Оформить заказ
// @Description Создаёт заказ, рассчитывает сумму на сервере и инициирует оплату
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body httpt.CreateOrderRequest true "Состав заказа и данные покупателя"
// @Success 201 {object} httpt.CreateOrderResponse "Заказ создан, возвращена ссылка на оплату"
// @Failure 400 {object} httpt.ErrorResponse "Некорректные данные заказа"
// @Failure 502 {object} httpt.ErrorResponse "Платёжный шлюз недоступен"
// @Router /orders [post]
func (h *OrderHandler) createOrderHandler(c *gin.Context) {
	const op = "transport.createOrderHandler"

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, op, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _checkoutTimeout)
	defer cancel()

	order := &entity.Order{
		Items:     req.Items,
		Customer:  req.Customer,
		PromoCode: req.PromoCode,
	}

	created, paymentURL, err := h.svc.PlaceOrder(ctx, order)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusCreated, CreateOrderResponse{
		OrderUID:   created.ID.String(),
		Status:     string(created.Status),
		Amount:     created.Amount,
		Currency:   created.Currency,
		PaymentURL: paymentURL,
	})
}

// @Summary Получить заказ
// @Description Возвращает заказ по уникальному идентификатору
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_uid path string true "Уникальный идентификатор заказа"
// @Success 200 {object} httpt.Order "Успешный ответ с данными заказа"
// @Failure 400 {object} httpt.ErrorResponse "Неверный формат order_uid"
// @Failure 404 {object} httpt.ErrorResponse "Заказ не найден"
// @Failure 500 {object} httpt.ErrorResponse "Внутренняя ошибка сервера"
// @Router /orders/{order_uid} [get]
func (h *OrderHandler) getOrderHandler(c *gin.Context) {
	const op = "transport.getOrderHandler"

	orderUID, ok := h.parseOrderUID(c, op)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	order, err := h.svc.GetOrder(ctx, orderUID)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, order)
}

// @Summary Статус заказа
// @Description Лёгкий эндпоинт для опроса статуса оплаты из браузера покупателя
// @Tags Orders
// @Produce json
// @Param order_uid path string true "Уникальный идентификатор заказа"
// @Success 200 {object} httpt.OrderStatusResponse "Текущий статус заказа"
// @Failure 400 {object} httpt.ErrorResponse "Неверный формат order_uid"
// @Failure 404 {object} httpt.ErrorResponse "Заказ не найден"
// @Router /orders/{order_uid}/status [get]
func (h *OrderHandler) getOrderStatusHandler(c *gin.Context) {
	const op = "transport.getOrderStatusHandler"

	orderUID, ok := h.parseOrderUID(c, op)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), _defaultContextTimeout)
	defer cancel()

	order, err := h.svc.GetOrder(ctx, orderUID)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, newStatusResponse(order))
}

// @Summary Подтвердить оплату (fallback)
// @Description Резервный путь подтверждения: сервер перепроверяет исход в шлюзе, а не верит клиенту
// @Tags Orders
// @Accept json
// @Produce json
// @Param order_uid path string true "Уникальный идентификатор заказа"
// @Param outcome body httpt.ConfirmPaymentRequest false "Исход оплаты по мнению клиента"
// @Success 200 {object} httpt.OrderStatusResponse "Актуальный статус после сверки"
// @Failure 400 {object} httpt.ErrorResponse "Неверный формат запроса"
// @Failure 404 {object} httpt.ErrorResponse "Заказ не найден"
// @Failure 502 {object} httpt.ErrorResponse "Платёжный шлюз недоступен"
// @Router /orders/{order_uid}/confirm [post]
func (h *OrderHandler) confirmPaymentHandler(c *gin.Context) {
	const op = "transport.confirmPaymentHandler"

	orderUID, ok := h.parseOrderUID(c, op)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.handleBindError(c, op, err)
		return
	}

	order, err := h.svc.ConfirmFromClient(c.Request.Context(), orderUID, req.Outcome)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, newStatusResponse(order))
}

// @Summary Зоны доставки
// @Description Возвращает прайс доставки по зонам для страницы оформления
// @Tags Zones
// @Produce json
// @Success 200 {array} entity.DeliveryZone "Список зон с тарифами"
// @Failure 500 {object} httpt.ErrorResponse "Внутренняя ошибка сервера"
// @Router /zones [get]
func (h *OrderHandler) listZonesHandler(c *gin.Context) {
	const op = "transport.listZonesHandler"

	zones, err := h.svc.ListZones(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	c.JSON(http.StatusOK, zones)
}

// @Summary Отменить заказ
// @Description Отмена по инициативе покупателя или флориста; возможна до завершения оплаты
// @Tags Orders
// @Produce json
// @Param order_uid path string true "Уникальный идентификатор заказа"
// @Success 200 {object} gin.H "Результат отмены и текущий статус"
// @Failure 400 {object} httpt.ErrorResponse "Неверный формат order_uid"
// @Failure 404 {object} httpt.ErrorResponse "Заказ не найден"
// @Router /orders/{order_uid}/cancel [post]
func (h *OrderHandler) cancelOrderHandler(c *gin.Context) {
	const op = "transport.cancelOrderHandler"

	orderUID, ok := h.parseOrderUID(c, op)
	if !ok {
		return
	}

	applied, order, err := h.svc.Apply(c.Request.Context(), orderUID, service.Event{
		Kind: entity.EventCanceled,
	})
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	// An already paid or already canceled order is reported as-is; the
	// caller sees applied=false and the untouched status.
	c.JSON(http.StatusOK, gin.H{
		"applied": applied,
		"status":  string(order.Status),
	})
}

// @Summary Вебхук платёжного шлюза
// @Description Принимает подписанный колбэк шлюза об исходе оплаты
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Signature header string true "HMAC-SHA256 подпись тела запроса"
// @Param event body httpt.PaymentWebhookRequest true "Событие оплаты"
// @Success 200 {object} gin.H "Событие обработано (в том числе идемпотентный повтор)"
// @Failure 400 {object} httpt.ErrorResponse "Некорректное тело запроса"
// @Failure 401 {object} httpt.ErrorResponse "Неверная подпись"
// @Router /payments/webhook [post]
func (h *OrderHandler) paymentWebhookHandler(c *gin.Context) {
	const op = "transport.paymentWebhookHandler"
	log := h.log.Ctx(c.Request.Context())

	body, err := c.GetRawData()
	if err != nil {
		h.handleBindError(c, op, err)
		return
	}

	signature := c.GetHeader("X-Signature")
	if !gateway.VerifySignature(h.webhookSecret, body, signature) {
		log.LogAttrs(c.Request.Context(), logger.WarnLevel, "webhook signature mismatch",
			logger.String("op", op),
			logger.String("remote_addr", c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var req PaymentWebhookRequest
	if err := bindWebhookBody(body, &req); err != nil {
		h.handleBindError(c, op, err)
		return
	}

	orderUID, err := uuid.Parse(req.OrderUID)
	if err != nil {
		h.handleInvalidUUID(c, op, req.OrderUID)
		return
	}

	ev := service.Event{Kind: entity.EventGatewaySuccess, PaymentID: req.PaymentID}
	if req.Status == "failure" {
		ev = service.Event{Kind: entity.EventGatewayFailure, Reason: req.Reason}
	}

	applied, _, err := h.svc.Apply(c.Request.Context(), orderUID, ev)
	if err != nil {
		h.handleServiceError(c, err, op)
		return
	}

	// Duplicates and out-of-order deliveries still get a 200 so the
	// gateway stops redelivering.
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

func (h *OrderHandler) parseOrderUID(c *gin.Context, op string) (uuid.UUID, bool) {
	orderUIDStr := c.Param("order_uid")

	orderUID, err := uuid.Parse(orderUIDStr)
	if err != nil {
		h.handleInvalidUUID(c, op, orderUIDStr)
		return uuid.Nil, false
	}
	return orderUID, true
}
