package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloomshop/internal/config"
	"bloomshop/internal/entity"
	"bloomshop/internal/gateway"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestGateway(t *testing.T, handler http.Handler) *gateway.HTTPGateway {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return gateway.NewHTTPGateway(
		&config.Gateway{
			BaseURL:        srv.URL,
			Provider:       "robokassa",
			Secret:         testSecret,
			RequestTimeout: 2 * time.Second,
		},
		metric.NewFactory().Gateway(),
		logger.NewNop(),
	)
}

func TestInitiate_Success(t *testing.T) {
	orderID := uuid.New()

	g := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payments", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// Outbound requests are signed over the raw body.
		require.True(t, gateway.VerifySignature(testSecret, body, r.Header.Get("X-Signature")))

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, orderID.String(), req["order_id"])
		require.EqualValues(t, 4300_00, req["amount"])
		require.Equal(t, "RUB", req["currency"])

		json.NewEncoder(w).Encode(gateway.InitiateResult{
			PaymentID:  "pay-1",
			PaymentURL: "https://pay.example/p/pay-1",
		})
	}))

	result, err := g.Initiate(context.Background(), orderID, 4300_00, "RUB")
	require.NoError(t, err)
	require.Equal(t, "pay-1", result.PaymentID)
	require.Equal(t, "https://pay.example/p/pay-1", result.PaymentURL)
}

func TestInitiate_ProviderErrorIsUnavailable(t *testing.T) {
	g := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := g.Initiate(context.Background(), uuid.New(), 100_00, "RUB")
	require.ErrorIs(t, err, entity.ErrGatewayUnavailable)
}

func TestInitiate_IncompleteResponseRejected(t *testing.T) {
	g := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gateway.InitiateResult{PaymentID: "pay-1"})
	}))

	_, err := g.Initiate(context.Background(), uuid.New(), 100_00, "RUB")
	require.ErrorIs(t, err, entity.ErrGatewayUnavailable)
}

func TestStatus_Success(t *testing.T) {
	g := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/pay-1", r.URL.Path)
		json.NewEncoder(w).Encode(gateway.StatusResult{
			Outcome: gateway.OutcomeFailure,
			Reason:  "card_declined",
		})
	}))

	result, err := g.Status(context.Background(), "pay-1")
	require.NoError(t, err)
	require.Equal(t, gateway.OutcomeFailure, result.Outcome)
	require.Equal(t, "card_declined", result.Reason)
}

func TestStatus_UnknownPayment(t *testing.T) {
	g := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := g.Status(context.Background(), "missing")
	require.ErrorIs(t, err, entity.ErrDataNotFound)
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"order_uid":"x","status":"success"}`)
	signature := gateway.Signature(testSecret, payload)

	require.True(t, gateway.VerifySignature(testSecret, payload, signature))
	require.False(t, gateway.VerifySignature(testSecret, payload, "deadbeef"))
	require.False(t, gateway.VerifySignature("other-secret", payload, signature))
	require.False(t, gateway.VerifySignature(testSecret, []byte("tampered"), signature))
}
