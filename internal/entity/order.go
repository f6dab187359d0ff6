package entity

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusCreated        OrderStatus = "created"
	StatusPaymentPending OrderStatus = "payment_pending"
	StatusPaid           OrderStatus = "paid"
	StatusFailed         OrderStatus = "failed"
	StatusCanceled       OrderStatus = "canceled"
)

type PaymentEvent string

const (
	EventInitiated      PaymentEvent = "initiated"
	EventGatewaySuccess PaymentEvent = "gateway_success"
	EventGatewayFailure PaymentEvent = "gateway_failure"

	// EventCanceled is raised by explicit buyer or staff action, never by
	// the gateway reconciliation paths.
	EventCanceled PaymentEvent = "canceled"
)

type Order struct {
	ID              uuid.UUID   `json:"order_uid"`
	Items           []*Item     `json:"items"                validate:"required,min=1,dive"`
	Amount          uint64      `json:"amount"`
	Currency        string      `json:"currency"             validate:"required,len=3"`
	Customer        *Customer   `json:"customer"             validate:"required"`
	Status          OrderStatus `json:"status"`
	PaymentID       string      `json:"payment_id,omitempty"`
	PaymentProvider string      `json:"payment_provider,omitempty"`
	PromoCode       string      `json:"promo_code,omitempty" validate:"max=50"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Terminal reports whether no further gateway-driven transition is legal.
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusCanceled
}

// LegalFrom returns the set of statuses an event may be applied from.
// Duplicate deliveries against the matching terminal status are not listed
// here: they are detected separately and absorbed as idempotent no-ops.
func (e PaymentEvent) LegalFrom() []OrderStatus {
	switch e {
	case EventInitiated:
		return []OrderStatus{StatusCreated}
	case EventGatewaySuccess, EventGatewayFailure:
		return []OrderStatus{StatusPaymentPending}
	case EventCanceled:
		return []OrderStatus{StatusCreated, StatusPaymentPending}
	default:
		return nil
	}
}

// Target returns the status the event moves an order to.
func (e PaymentEvent) Target() OrderStatus {
	switch e {
	case EventInitiated:
		return StatusPaymentPending
	case EventGatewaySuccess:
		return StatusPaid
	case EventGatewayFailure:
		return StatusFailed
	case EventCanceled:
		return StatusCanceled
	default:
		return ""
	}
}
