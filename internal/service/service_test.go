package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bloomshop/internal/entity"
	"bloomshop/internal/gateway"
	"bloomshop/internal/notify"
	"bloomshop/internal/service"
	mock_service "bloomshop/internal/service/mock"
	"bloomshop/pkg/cache"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"
	"bloomshop/pkg/storage/postgres"
	mock_transaction "bloomshop/pkg/storage/postgres/transaction/mock"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type serviceMocks struct {
	orderRepo *mock_service.MockOrderRepository
	zoneRepo  *mock_service.MockZoneRepository
	gateway   *mock_service.MockPaymentGateway
	notifier  *mock_service.MockNotifier
	txManager *mock_transaction.MockManager
}

func newTestService(t *testing.T) (*service.OrderService, *serviceMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := &serviceMocks{
		orderRepo: mock_service.NewMockOrderRepository(ctrl),
		zoneRepo:  mock_service.NewMockZoneRepository(ctrl),
		gateway:   mock_service.NewMockPaymentGateway(ctrl),
		notifier:  mock_service.NewMockNotifier(ctrl),
		txManager: mock_transaction.NewMockManager(ctrl),
	}

	orderCache, err := cache.NewLRUCache[uuid.UUID, *entity.Order](
		100,
		logger.NewNop(),
		metric.NewFactory().Cache(),
	)
	require.NoError(t, err)

	svc := service.NewOrderService(
		m.orderRepo,
		m.zoneRepo,
		m.gateway,
		m.notifier,
		m.txManager,
		logger.NewNop(),
		orderCache,
		5*time.Minute,
		"RUB",
	)

	return svc, m
}

func generateFakeItem() *entity.Item {
	return &entity.Item{
		ProductID: gofakeit.UUID(),
		Name:      gofakeit.ProductName(),
		Price:     uint64(gofakeit.UintRange(100_00, 5000_00)),
		Quantity:  uint32(gofakeit.UintRange(1, 3)),
	}
}

func generateFakeCustomer() *entity.Customer {
	return &entity.Customer{
		Name:         gofakeit.Name(),
		Phone:        "+7" + gofakeit.Numerify("##########"),
		Email:        gofakeit.Email(),
		DeliveryType: entity.DeliveryPickup,
	}
}

func generateFakeCheckout() *entity.Order {
	itemsCount := gofakeit.Number(1, 4)
	items := make([]*entity.Item, 0, itemsCount)
	for range itemsCount {
		items = append(items, generateFakeItem())
	}

	return &entity.Order{
		Items:    items,
		Customer: generateFakeCustomer(),
	}
}

func orderInStatus(orderUID uuid.UUID, status entity.OrderStatus) *entity.Order {
	order := generateFakeCheckout()
	order.ID = orderUID
	order.Status = status
	order.Currency = "RUB"
	order.Amount = 4300_00
	if status != entity.StatusCreated {
		order.PaymentID = gofakeit.UUID()
		order.PaymentProvider = "robokassa"
	}
	return order
}

func expectTransactionalCreate(m *serviceMocks) {
	m.txManager.EXPECT().ExecuteInTransaction(
		gomock.Any(), "PlaceOrder", gomock.Any(),
	).DoAndReturn(func(
		ctx context.Context,
		opName string,
		txFunc func(postgres.QueryExecuter) error,
	) error {
		return txFunc(nil)
	}).Times(1)

	m.orderRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			tx postgres.QueryExecuter,
			order *entity.Order,
		) (*entity.Order, error) {
			return order, nil
		}).Times(1)
}

func TestPlaceOrder_Success(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	checkout := generateFakeCheckout()

	expectTransactionalCreate(m)

	m.gateway.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any(), "RUB").
		Return(&gateway.InitiateResult{
			PaymentID:  "pay-123",
			PaymentURL: "https://pay.example/redirect/pay-123",
		}, nil).Times(1)

	m.gateway.EXPECT().Provider().Return("robokassa").Times(1)

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), gomock.Any(),
		[]entity.OrderStatus{entity.StatusCreated},
		entity.StatusPaymentPending,
		"pay-123", "robokassa",
	).Return(true, nil).Times(1)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, orderUID uuid.UUID) (*entity.Order, error) {
			return orderInStatus(orderUID, entity.StatusPaymentPending), nil
		}).Times(1)

	m.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any(), notify.KindOrderCreated, "").
		Return(nil).Times(1)

	updated, paymentURL, err := svc.PlaceOrder(context.Background(), checkout)
	require.NoError(t, err)
	require.Equal(t, entity.StatusPaymentPending, updated.Status)
	require.Equal(t, "https://pay.example/redirect/pay-123", paymentURL)
}

func TestPlaceOrder_ServerSidePricingIgnoresClientAmount(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)

	checkout := generateFakeCheckout()
	checkout.Items = []*entity.Item{
		{ProductID: "rose-41", Name: "Роза", Price: 150_00, Quantity: 2},
	}
	checkout.Amount = 1 // client-sent amount must be discarded

	var priced uint64
	m.txManager.EXPECT().ExecuteInTransaction(
		gomock.Any(), "PlaceOrder", gomock.Any(),
	).DoAndReturn(func(
		ctx context.Context,
		opName string,
		txFunc func(postgres.QueryExecuter) error,
	) error {
		return txFunc(nil)
	}).Times(1)
	m.orderRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			tx postgres.QueryExecuter,
			order *entity.Order,
		) (*entity.Order, error) {
			priced = order.Amount
			return order, nil
		}).Times(1)

	m.gateway.EXPECT().Initiate(gomock.Any(), gomock.Any(), uint64(300_00), "RUB").
		Return(&gateway.InitiateResult{PaymentID: "p", PaymentURL: "u"}, nil).Times(1)
	m.gateway.EXPECT().Provider().Return("robokassa").Times(1)
	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).Return(true, nil).Times(1)
	m.orderRepo.EXPECT().GetByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, orderUID uuid.UUID) (*entity.Order, error) {
			return orderInStatus(orderUID, entity.StatusPaymentPending), nil
		}).Times(1)
	m.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).Times(1)

	_, _, err := svc.PlaceOrder(context.Background(), checkout)
	require.NoError(t, err)
	require.EqualValues(t, 300_00, priced)
}

func TestPlaceOrder_UnknownZoneRejected(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)

	checkout := generateFakeCheckout()
	checkout.Customer.DeliveryType = entity.DeliveryCourier
	checkout.Customer.DeliveryZone = "atlantis"

	m.zoneRepo.EXPECT().GetByCode(gomock.Any(), "atlantis").
		Return(nil, entity.ErrDataNotFound).Times(1)

	_, _, err := svc.PlaceOrder(context.Background(), checkout)
	require.ErrorIs(t, err, entity.ErrInvalidData)
}

func TestPlaceOrder_InvalidCheckoutRejected(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	checkout := generateFakeCheckout()
	checkout.Items = nil

	_, _, err := svc.PlaceOrder(context.Background(), checkout)
	require.ErrorIs(t, err, entity.ErrInvalidData)
}

func TestPlaceOrder_GatewayDownKeepsOrderCreated(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	checkout := generateFakeCheckout()

	expectTransactionalCreate(m)

	m.gateway.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any(), "RUB").
		Return(nil, entity.ErrGatewayUnavailable).Times(1)

	order, _, err := svc.PlaceOrder(context.Background(), checkout)
	require.ErrorIs(t, err, entity.ErrGatewayUnavailable)
	require.NotNil(t, order)
	require.Equal(t, entity.StatusCreated, order.Status)
}

func TestApply_WinnerNotifiesOnce(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID,
		[]entity.OrderStatus{entity.StatusPaymentPending},
		entity.StatusPaid,
		"", "",
	).Return(true, nil).Times(1)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusPaid), nil).Times(1)

	m.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any(), notify.KindPaymentSuccess, "").
		Return(nil).Times(1)

	applied, order, err := svc.Apply(context.Background(), orderUID, service.Event{
		Kind: entity.EventGatewaySuccess,
	})
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, entity.StatusPaid, order.Status)
}

func TestApply_DuplicateAbsorbedWithoutSecondNotification(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID, gomock.Any(), entity.StatusPaid, gomock.Any(), gomock.Any(),
	).Return(false, nil).Times(1)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusPaid), nil).Times(1)

	// No notifier expectation: a duplicate must not notify.

	applied, order, err := svc.Apply(context.Background(), orderUID, service.Event{
		Kind: entity.EventGatewaySuccess,
	})
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, entity.StatusPaid, order.Status)
}

func TestApply_FailureAfterPaidRejected(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID,
		[]entity.OrderStatus{entity.StatusPaymentPending},
		entity.StatusFailed,
		"", "",
	).Return(false, nil).Times(1)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusPaid), nil).Times(1)

	applied, order, err := svc.Apply(context.Background(), orderUID, service.Event{
		Kind:   entity.EventGatewayFailure,
		Reason: "card_declined",
	})
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, entity.StatusPaid, order.Status)
}

func TestApply_NotificationFailureDoesNotFailTransition(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).Return(true, nil).Times(1)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusPaid), nil).Times(1)

	m.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("telegram down")).Times(1)

	applied, _, err := svc.Apply(context.Background(), orderUID, service.Event{
		Kind: entity.EventGatewaySuccess,
	})
	require.NoError(t, err)
	require.True(t, applied)
}

func TestApply_RacingCallersNotifyExactlyOnce(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	// First caller wins the conditional update, second loses.
	gomock.InOrder(
		m.orderRepo.EXPECT().UpdateStatusIf(
			gomock.Any(), orderUID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return(true, nil),
		m.orderRepo.EXPECT().UpdateStatusIf(
			gomock.Any(), orderUID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		).Return(false, nil),
	)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusPaid), nil).Times(2)

	m.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any(), notify.KindPaymentSuccess, "").
		Return(nil).Times(1)

	ev := service.Event{Kind: entity.EventGatewaySuccess}

	first, _, err := svc.Apply(context.Background(), orderUID, ev)
	require.NoError(t, err)
	second, _, err := svc.Apply(context.Background(), orderUID, ev)
	require.NoError(t, err)

	require.True(t, first)
	require.False(t, second)
}

func TestApply_CancelIsAppliedSilently(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID,
		[]entity.OrderStatus{entity.StatusCreated, entity.StatusPaymentPending},
		entity.StatusCanceled,
		"", "",
	).Return(true, nil).Times(1)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusCanceled), nil).Times(1)

	// No notifier expectation: cancellations are initiated by the buyer or
	// staff, nobody needs to be told.
	applied, order, err := svc.Apply(context.Background(), orderUID, service.Event{
		Kind: entity.EventCanceled,
	})
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, entity.StatusCanceled, order.Status)
}

func TestApply_EventAgainstCanceledOrderRejected(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).Return(false, nil).Times(1)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusCanceled), nil).Times(1)

	applied, order, err := svc.Apply(context.Background(), orderUID, service.Event{
		Kind: entity.EventGatewaySuccess,
	})
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, entity.StatusCanceled, order.Status)
}

func TestConfirmFromClient_TerminalOrderSkipsGateway(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusPaid), nil).Times(1)

	order, err := svc.ConfirmFromClient(context.Background(), orderUID, "failure")
	require.NoError(t, err)
	require.Equal(t, entity.StatusPaid, order.Status)
}

func TestConfirmFromClient_OutcomeComesFromGatewayNotClient(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()
	pending := orderInStatus(orderUID, entity.StatusPaymentPending)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(pending, nil).Times(1)

	// The client claims success; the gateway says the payment failed.
	m.gateway.EXPECT().Status(gomock.Any(), pending.PaymentID).
		Return(&gateway.StatusResult{
			Outcome: gateway.OutcomeFailure,
			Reason:  "insufficient_funds",
		}, nil).Times(1)

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID,
		[]entity.OrderStatus{entity.StatusPaymentPending},
		entity.StatusFailed,
		"", "",
	).Return(true, nil).Times(1)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusFailed), nil).Times(1)

	m.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any(), notify.KindPaymentFailed, "insufficient_funds").
		Return(nil).Times(1)

	order, err := svc.ConfirmFromClient(context.Background(), orderUID, "success")
	require.NoError(t, err)
	require.Equal(t, entity.StatusFailed, order.Status)
}

func TestConfirmFromClient_StillPendingAtProvider(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()
	pending := orderInStatus(orderUID, entity.StatusPaymentPending)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(pending, nil).Times(1)

	m.gateway.EXPECT().Status(gomock.Any(), pending.PaymentID).
		Return(&gateway.StatusResult{Outcome: gateway.OutcomePending}, nil).Times(1)

	order, err := svc.ConfirmFromClient(context.Background(), orderUID, "")
	require.NoError(t, err)
	require.Equal(t, entity.StatusPaymentPending, order.Status)
}

func TestConfirmFromClient_GatewayErrorPropagates(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()
	pending := orderInStatus(orderUID, entity.StatusPaymentPending)

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(pending, nil).Times(1)

	m.gateway.EXPECT().Status(gomock.Any(), pending.PaymentID).
		Return(nil, entity.ErrGatewayUnavailable).Times(1)

	_, err := svc.ConfirmFromClient(context.Background(), orderUID, "success")
	require.ErrorIs(t, err, entity.ErrGatewayUnavailable)
}

func TestListZones_PropagatesRepositoryError(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)

	m.zoneRepo.EXPECT().List(gomock.Any()).
		Return(nil, errors.New("connection refused")).Times(1)

	_, err := svc.ListZones(context.Background())
	require.Error(t, err)
}

func TestGetOrder_SecondReadServedFromCache(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(orderInStatus(orderUID, entity.StatusPaymentPending), nil).Times(1)

	first, err := svc.GetOrder(context.Background(), orderUID)
	require.NoError(t, err)

	second, err := svc.GetOrder(context.Background(), orderUID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(nil, entity.ErrDataNotFound).Times(1)

	_, err := svc.GetOrder(context.Background(), orderUID)
	require.ErrorIs(t, err, entity.ErrDataNotFound)
}
