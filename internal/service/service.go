package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloomshop/internal/entity"
	"bloomshop/internal/gateway"
	"bloomshop/internal/notify"
	"bloomshop/internal/pricing"
	"bloomshop/pkg/cache"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/storage/postgres"
	"bloomshop/pkg/storage/postgres/transaction"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	_defaultContextTimeout = 500 * time.Millisecond
	_slowOpThreshold       = 200 * time.Millisecond
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock_service

type (
	OrderRepository interface {
		Create(
			ctx context.Context,
			queryExecuter postgres.QueryExecuter,
			order *entity.Order,
		) (*entity.Order, error)
		GetByID(ctx context.Context, orderUID uuid.UUID) (*entity.Order, error)
		UpdateStatusIf(
			ctx context.Context,
			orderUID uuid.UUID,
			from []entity.OrderStatus,
			to entity.OrderStatus,
			paymentID, provider string,
		) (bool, error)
	}

	ZoneRepository interface {
		GetByCode(ctx context.Context, code string) (*entity.DeliveryZone, error)
		List(ctx context.Context) ([]*entity.DeliveryZone, error)
	}

	PaymentGateway interface {
		Provider() string
		Initiate(
			ctx context.Context,
			orderID uuid.UUID,
			amount uint64,
			currency string,
		) (*gateway.InitiateResult, error)
		Status(ctx context.Context, paymentID string) (*gateway.StatusResult, error)
	}

	Notifier interface {
		Notify(ctx context.Context, order *entity.Order, kind notify.Kind, reason string) error
	}

	// Event is a payment lifecycle event delivered to Apply. PaymentID is
	// set for the initiated event; Reason accompanies gateway failures.
	Event struct {
		Kind      entity.PaymentEvent
		PaymentID string
		Reason    string
	}

	OrderService struct {
		orderRepo OrderRepository
		zoneRepo  ZoneRepository
		gateway   PaymentGateway
		notifier  Notifier
		txManager transaction.Manager
		logger    logger.Logger
		cache     cache.Cache[uuid.UUID, *entity.Order]
		cacheTTL  time.Duration
		currency  string
		validate  *validator.Validate
	}
)

func NewOrderService(
	orderRepo OrderRepository,
	zoneRepo ZoneRepository,
	paymentGateway PaymentGateway,
	notifier Notifier,
	txManager transaction.Manager,
	logger logger.Logger,
	orderCache cache.Cache[uuid.UUID, *entity.Order],
	cacheTTL time.Duration,
	currency string,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		zoneRepo:  zoneRepo,
		gateway:   paymentGateway,
		notifier:  notifier,
		txManager: txManager,
		logger:    logger,
		cache:     orderCache,
		cacheTTL:  cacheTTL,
		currency:  currency,
		validate:  validator.New(),
	}
}

// PlaceOrder persists a checkout submission and hands it to the payment
// gateway. The charge is computed server-side here, exactly once; whatever
// amount the client sent is discarded. On gateway failure the order stays
// in created and the error propagates so the buyer can retry checkout.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	order *entity.Order,
) (*entity.Order, string, error) {
	const op = "service.PlaceOrder"
	log := s.logger.Ctx(ctx)

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		if duration > _slowOpThreshold {
			log.LogAttrs(ctx, logger.WarnLevel, "slow service operation",
				logger.String("op", op),
				logger.String("duration", duration.String()),
			)
		}
	}()

	order.ID = uuid.New()
	order.Status = entity.StatusCreated
	order.Currency = s.currency
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt

	if err := s.validateOrder(order); err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "order validation failed",
			logger.String("op", op),
			logger.Any("error", err),
		)
		return nil, "", fmt.Errorf("%s: validate order: %w", op, err)
	}

	if err := s.priceOrder(ctx, order); err != nil {
		return nil, "", fmt.Errorf("%s: price order: %w", op, err)
	}

	if err := s.createOrderWithTransaction(ctx, order); err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "order creation failed",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("order_uid", order.ID.String()),
		)
		return nil, "", err
	}

	log.LogAttrs(ctx, logger.InfoLevel, "order created",
		logger.String("op", op),
		logger.String("order_uid", order.ID.String()),
		logger.Int("items_count", len(order.Items)),
		logger.Int64("amount", int64(order.Amount)),
	)

	initiated, err := s.gateway.Initiate(ctx, order.ID, order.Amount, order.Currency)
	if err != nil {
		log.LogAttrs(ctx, logger.ErrorLevel, "payment initiation failed",
			logger.String("op", op),
			logger.Any("error", err),
			logger.String("order_uid", order.ID.String()),
		)
		return order, "", fmt.Errorf("%s: initiate payment: %w", op, err)
	}

	applied, updated, err := s.Apply(ctx, order.ID, Event{
		Kind:      entity.EventInitiated,
		PaymentID: initiated.PaymentID,
	})
	if err != nil {
		return order, "", fmt.Errorf("%s: apply initiated: %w", op, err)
	}
	if !applied {
		// Somebody beat us to it; createOrder just returned, so this can
		// only be a replayed checkout submission.
		log.LogAttrs(ctx, logger.WarnLevel, "initiated event not applied",
			logger.String("op", op),
			logger.String("order_uid", order.ID.String()),
			logger.String("status", string(updated.Status)),
		)
	}

	return updated, initiated.PaymentURL, nil
}

// Apply is the single entry point for order status transitions. It is
// re-entrant and safe to call concurrently for the same order: the decision
// is one conditional UPDATE in the store, and of two racing callers at most
// one observes applied=true. A duplicate or out-of-order event is absorbed
// as applied=false with a warning; it is an expected race, not an error.
//
// The matching notification is dispatched only by the caller that won the
// transition, strictly after the commit. A failed notification is logged
// and parked for redelivery; it never rolls the transition back.
func (s *OrderService) Apply(
	ctx context.Context,
	orderUID uuid.UUID,
	ev Event,
) (bool, *entity.Order, error) {
	const op = "service.Apply"
	log := s.logger.Ctx(ctx)

	provider := ""
	if ev.Kind == entity.EventInitiated {
		provider = s.gateway.Provider()
	}

	applied, err := s.orderRepo.UpdateStatusIf(
		ctx,
		orderUID,
		ev.Kind.LegalFrom(),
		ev.Kind.Target(),
		ev.PaymentID,
		provider,
	)
	if err != nil {
		return false, nil, fmt.Errorf("%s: conditional update: %w", op, err)
	}

	order, err := s.orderRepo.GetByID(ctx, orderUID)
	if err != nil {
		return false, nil, fmt.Errorf("%s: get order: %w", op, err)
	}

	s.cache.Put(orderUID, order, s.cacheTTL)

	if !applied {
		s.logRejectedEvent(ctx, order, ev)
		return false, order, nil
	}

	log.LogAttrs(ctx, logger.InfoLevel, "order status transition applied",
		logger.String("op", op),
		logger.String("order_uid", orderUID.String()),
		logger.String("event", string(ev.Kind)),
		logger.String("status", string(order.Status)),
	)

	kind, notifiable := notifyKind(ev.Kind)
	if !notifiable {
		return true, order, nil
	}

	if err := s.notifier.Notify(ctx, order, kind, ev.Reason); err != nil {
		// Status truth lives in the store; delivery is best-effort and
		// already parked for redelivery by the notifier.
		log.LogAttrs(ctx, logger.ErrorLevel, "post-transition notification failed",
			logger.String("op", op),
			logger.String("order_uid", orderUID.String()),
			logger.String("event", string(ev.Kind)),
			logger.Any("error", err),
		)
	}

	return true, order, nil
}

func (s *OrderService) logRejectedEvent(ctx context.Context, order *entity.Order, ev Event) {
	const op = "service.Apply"

	if order.Status == ev.Kind.Target() {
		// Duplicate delivery of an already-applied event: idempotent no-op,
		// and no second notification.
		s.logger.Ctx(ctx).LogAttrs(ctx, logger.InfoLevel, "duplicate event absorbed",
			logger.String("op", op),
			logger.String("order_uid", order.ID.String()),
			logger.String("event", string(ev.Kind)),
		)
		return
	}

	s.logger.Ctx(ctx).LogAttrs(ctx, logger.WarnLevel, "illegal transition rejected",
		logger.String("op", op),
		logger.String("order_uid", order.ID.String()),
		logger.String("event", string(ev.Kind)),
		logger.String("status", string(order.Status)),
		logger.Any("error", entity.ErrIllegalTransition),
	)
}

// ConfirmFromClient is the fallback confirmation entry point used by the
// buyer-side poller after the gateway redirect. The claimed outcome is never
// trusted: the true outcome is re-derived from the gateway's status lookup
// and only then applied.
func (s *OrderService) ConfirmFromClient(
	ctx context.Context,
	orderUID uuid.UUID,
	claimed string,
) (*entity.Order, error) {
	const op = "service.ConfirmFromClient"
	log := s.logger.Ctx(ctx)

	order, err := s.orderRepo.GetByID(ctx, orderUID)
	if err != nil {
		return nil, fmt.Errorf("%s: get order: %w", op, err)
	}

	if order.Status.Terminal() || order.Status == entity.StatusCreated || order.PaymentID == "" {
		return order, nil
	}

	status, err := s.gateway.Status(ctx, order.PaymentID)
	if err != nil {
		log.LogAttrs(ctx, logger.WarnLevel, "gateway status lookup failed",
			logger.String("op", op),
			logger.String("order_uid", orderUID.String()),
			logger.String("claimed", claimed),
			logger.Any("error", err),
		)
		return nil, fmt.Errorf("%s: gateway status: %w", op, err)
	}

	var ev Event
	switch status.Outcome {
	case gateway.OutcomeSuccess:
		ev = Event{Kind: entity.EventGatewaySuccess}
	case gateway.OutcomeFailure:
		ev = Event{Kind: entity.EventGatewayFailure, Reason: status.Reason}
	default:
		// Still pending at the provider; the poller will come back.
		return order, nil
	}

	if claimed != "" && claimed != string(status.Outcome) {
		log.LogAttrs(ctx, logger.WarnLevel, "client-claimed outcome differs from gateway",
			logger.String("op", op),
			logger.String("order_uid", orderUID.String()),
			logger.String("claimed", claimed),
			logger.String("actual", string(status.Outcome)),
		)
	}

	_, updated, err := s.Apply(ctx, orderUID, ev)
	if err != nil {
		return nil, fmt.Errorf("%s: apply: %w", op, err)
	}

	return updated, nil
}

// GetOrder serves reads, cache first. The poller hits this on every tick,
// so cached entries are refreshed on each applied transition.
func (s *OrderService) GetOrder(ctx context.Context, orderUID uuid.UUID) (*entity.Order, error) {
	const op = "service.GetOrder"
	log := s.logger.Ctx(ctx)

	if cached, found := s.cache.Get(orderUID); found {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, _defaultContextTimeout)
	defer cancel()

	order, err := s.orderRepo.GetByID(ctx, orderUID)
	if err != nil {
		if !errors.Is(err, entity.ErrDataNotFound) {
			log.LogAttrs(ctx, logger.ErrorLevel, "failed to get order from database",
				logger.String("op", op),
				logger.Any("error", err),
				logger.String("order_uid", orderUID.String()),
			)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Put(orderUID, order, s.cacheTTL)

	return order, nil
}

// ListZones returns the delivery price table for the checkout page.
func (s *OrderService) ListZones(ctx context.Context) ([]*entity.DeliveryZone, error) {
	const op = "service.ListZones"

	ctx, cancel := context.WithTimeout(ctx, _defaultContextTimeout)
	defer cancel()

	zones, err := s.zoneRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return zones, nil
}

func (s *OrderService) createOrderWithTransaction(
	ctx context.Context,
	order *entity.Order,
) error {
	err := s.txManager.ExecuteInTransaction(
		ctx,
		"PlaceOrder",
		func(tx postgres.QueryExecuter) error {
			if _, err := s.orderRepo.Create(ctx, tx, order); err != nil {
				return transaction.HandleError("PlaceOrder", "create order", err)
			}
			return nil
		},
	)
	if err != nil {
		return err
	}

	s.cache.Put(order.ID, order, s.cacheTTL)
	return nil
}

func (s *OrderService) priceOrder(ctx context.Context, order *entity.Order) error {
	const op = "service.priceOrder"

	var zone *entity.DeliveryZone
	if !order.Customer.IsPickup() && order.Customer.DeliveryZone != "" {
		found, err := s.zoneRepo.GetByCode(ctx, order.Customer.DeliveryZone)
		if err != nil {
			if errors.Is(err, entity.ErrDataNotFound) {
				return fmt.Errorf("%s: unknown delivery zone %q: %w",
					op, order.Customer.DeliveryZone, entity.ErrInvalidData)
			}
			return fmt.Errorf("%s: get zone: %w", op, err)
		}
		zone = found
	}

	surcharge := pricing.Surcharge(
		pricing.Subtotal(order.Items),
		zone,
		order.Customer.IsPickup(),
		order.Customer.IsNightSlot(),
	)
	order.Amount = pricing.OrderAmount(order.Items, surcharge)

	return nil
}

func (s *OrderService) validateOrder(order *entity.Order) error {
	if order.Customer == nil {
		return entity.ErrInvalidData
	}
	if len(order.Items) == 0 {
		return entity.ErrInvalidData
	}
	if err := s.validate.Struct(order); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrInvalidData, err)
	}
	return nil
}

// notifyKind maps a lifecycle event to its staff notification. Cancellations
// come from the buyer or staff themselves, so nothing is sent for them.
func notifyKind(event entity.PaymentEvent) (notify.Kind, bool) {
	switch event {
	case entity.EventInitiated:
		return notify.KindOrderCreated, true
	case entity.EventGatewaySuccess:
		return notify.KindPaymentSuccess, true
	case entity.EventGatewayFailure:
		return notify.KindPaymentFailed, true
	default:
		return "", false
	}
}
