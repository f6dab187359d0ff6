// nolint: revive,staticcheck
// swagger:meta
package httpt

import (
	"time"

	"bloomshop/internal/entity"
)

// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Items     []*entity.Item   `json:"items"                binding:"required"`
	Customer  *entity.Customer `json:"customer"             binding:"required"`
	PromoCode string           `json:"promo_code,omitempty"`
}

// swagger:model CreateOrderResponse
type CreateOrderResponse struct {
	OrderUID   string `json:"order_uid"`
	Status     string `json:"status"`
	Amount     uint64 `json:"amount"`
	Currency   string `json:"currency"`
	PaymentURL string `json:"payment_url"`
}

// swagger:model OrderStatusResponse
type OrderStatusResponse struct {
	OrderUID  string    `json:"order_uid"`
	Status    string    `json:"status"`
	Amount    uint64    `json:"amount"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

// swagger:model ConfirmPaymentRequest
type ConfirmPaymentRequest struct {
	Outcome string `json:"outcome" binding:"omitempty,oneof=success failure"`
}

// swagger:model PaymentWebhookRequest
type PaymentWebhookRequest struct {
	OrderUID  string `json:"order_uid"  binding:"required"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"     binding:"required,oneof=success failure"`
	Reason    string `json:"reason"`
}

// swagger:model Order
type Order entity.Order

func newStatusResponse(order *entity.Order) OrderStatusResponse {
	return OrderStatusResponse{
		OrderUID:  order.ID.String(),
		Status:    string(order.Status),
		Amount:    order.Amount,
		Currency:  order.Currency,
		UpdatedAt: order.UpdatedAt,
	}
}
