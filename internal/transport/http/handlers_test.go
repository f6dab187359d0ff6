package httpt_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloomshop/internal/entity"
	"bloomshop/internal/gateway"
	"bloomshop/internal/service"
	mock_service "bloomshop/internal/service/mock"
	httpt "bloomshop/internal/transport/http"
	"bloomshop/pkg/cache"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"
	mock_transaction "bloomshop/pkg/storage/postgres/transaction/mock"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "webhook-secret"

type handlerMocks struct {
	orderRepo *mock_service.MockOrderRepository
	zoneRepo  *mock_service.MockZoneRepository
	gateway   *mock_service.MockPaymentGateway
	notifier  *mock_service.MockNotifier
}

func newTestHandler(t *testing.T) (*gin.Engine, *handlerMocks) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := &handlerMocks{
		orderRepo: mock_service.NewMockOrderRepository(ctrl),
		zoneRepo:  mock_service.NewMockZoneRepository(ctrl),
		gateway:   mock_service.NewMockPaymentGateway(ctrl),
		notifier:  mock_service.NewMockNotifier(ctrl),
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
		mock_transaction.NewMockManager(ctrl),
		logger.NewNop(),
		orderCache,
		5*time.Minute,
		"RUB",
	)

	handler := httpt.NewOrderHandler(svc, logger.NewNop(), metric.NewFactory().HTTP(), testWebhookSecret)

	return handler.Engine(), m
}

func pendingOrder(orderUID uuid.UUID) *entity.Order {
	return &entity.Order{
		ID:       orderUID,
		Status:   entity.StatusPaymentPending,
		Amount:   4300_00,
		Currency: "RUB",
		Items: []*entity.Item{
			{ProductID: "p1", Name: "Букет", Price: 4300_00, Quantity: 1},
		},
		Customer: &entity.Customer{
			Name:         "Мария",
			Phone:        "+79261234567",
			DeliveryType: entity.DeliveryPickup,
		},
		PaymentID:       "pay-1",
		PaymentProvider: "robokassa",
	}
}

func webhookBody(orderUID uuid.UUID, status string) []byte {
	body, _ := json.Marshal(map[string]string{
		"order_uid":  orderUID.String(),
		"payment_id": "pay-1",
		"status":     status,
	})
	return body
}

func TestPaymentWebhook_SignedSuccessApplied(t *testing.T) {
	router, m := newTestHandler(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID,
		[]entity.OrderStatus{entity.StatusPaymentPending},
		entity.StatusPaid,
		"pay-1", "",
	).Return(true, nil).Times(1)

	paid := pendingOrder(orderUID)
	paid.Status = entity.StatusPaid
	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).Return(paid, nil).Times(1)

	m.notifier.EXPECT().
		Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).Times(1)

	body := webhookBody(orderUID, "success")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Signature", gateway.Signature(testWebhookSecret, body))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"applied": true}`, rec.Body.String())
}

func TestPaymentWebhook_BadSignatureRejected(t *testing.T) {
	router, _ := newTestHandler(t)
	body := webhookBody(uuid.New(), "success")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Signature", "deadbeef")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPaymentWebhook_DuplicateStillAccepted(t *testing.T) {
	router, m := newTestHandler(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).Return(false, nil).Times(1)

	paid := pendingOrder(orderUID)
	paid.Status = entity.StatusPaid
	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).Return(paid, nil).Times(1)

	body := webhookBody(orderUID, "success")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Signature", gateway.Signature(testWebhookSecret, body))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// The gateway must see 200 on duplicates so it stops redelivering.
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"applied": false}`, rec.Body.String())
}

func TestPaymentWebhook_MalformedBodyRejected(t *testing.T) {
	router, _ := newTestHandler(t)
	body := []byte(`{"order_uid": "", "status": "paidish"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("X-Signature", gateway.Signature(testWebhookSecret, body))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderStatus_Success(t *testing.T) {
	router, m := newTestHandler(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(pendingOrder(orderUID), nil).Times(1)

	url := fmt.Sprintf("/api/v1/orders/%s/status", orderUID)
	req := httptest.NewRequest(http.MethodGet, url, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, orderUID.String(), status["order_uid"])
	require.Equal(t, "payment_pending", status["status"])
}

func TestGetOrder_NotFound(t *testing.T) {
	router, m := newTestHandler(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).
		Return(nil, entity.ErrDataNotFound).Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderUID.String(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder_InvalidUID(t *testing.T) {
	router, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListZones_ReturnsPriceTable(t *testing.T) {
	router, m := newTestHandler(t)

	m.zoneRepo.EXPECT().List(gomock.Any()).Return([]*entity.DeliveryZone{
		{Code: "center", Name: "Центр", FeeUnderThreshold: 300_00, FreeFromThreshold: 3000_00},
		{Code: "suburb", Name: "Пригород", FeeUnderThreshold: 500_00, FreeFromThreshold: 5000_00},
	}, nil).Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/zones", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var zones []entity.DeliveryZone
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &zones))
	require.Len(t, zones, 2)
	require.Equal(t, "center", zones[0].Code)
	require.EqualValues(t, 300_00, zones[0].FeeUnderThreshold)
}

func TestCancelOrder_PendingOrderCanceled(t *testing.T) {
	router, m := newTestHandler(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID,
		[]entity.OrderStatus{entity.StatusCreated, entity.StatusPaymentPending},
		entity.StatusCanceled,
		"", "",
	).Return(true, nil).Times(1)

	canceled := pendingOrder(orderUID)
	canceled.Status = entity.StatusCanceled
	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).Return(canceled, nil).Times(1)

	url := fmt.Sprintf("/api/v1/orders/%s/cancel", orderUID)
	req := httptest.NewRequest(http.MethodPost, url, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"applied": true, "status": "canceled"}`, rec.Body.String())
}

func TestCancelOrder_PaidOrderNotCanceled(t *testing.T) {
	router, m := newTestHandler(t)
	orderUID := uuid.New()

	m.orderRepo.EXPECT().UpdateStatusIf(
		gomock.Any(), orderUID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
	).Return(false, nil).Times(1)

	paid := pendingOrder(orderUID)
	paid.Status = entity.StatusPaid
	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).Return(paid, nil).Times(1)

	url := fmt.Sprintf("/api/v1/orders/%s/cancel", orderUID)
	req := httptest.NewRequest(http.MethodPost, url, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"applied": false, "status": "paid"}`, rec.Body.String())
}

func TestConfirmPayment_EmptyBodyTolerated(t *testing.T) {
	router, m := newTestHandler(t)
	orderUID := uuid.New()

	paid := pendingOrder(orderUID)
	paid.Status = entity.StatusPaid
	m.orderRepo.EXPECT().GetByID(gomock.Any(), orderUID).Return(paid, nil).Times(1)

	url := fmt.Sprintf("/api/v1/orders/%s/confirm", orderUID)
	req := httptest.NewRequest(http.MethodPost, url, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
