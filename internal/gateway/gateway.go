package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bloomshop/internal/config"
	"bloomshop/internal/entity"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"

	"github.com/google/uuid"
)

// Outcome is the gateway's view of a payment.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

type (
	InitiateResult struct {
		PaymentID  string `json:"payment_id"`
		PaymentURL string `json:"payment_url"`
	}

	StatusResult struct {
		Outcome Outcome `json:"outcome"`
		Reason  string  `json:"reason,omitempty"`
	}

	// HTTPGateway talks to the payment provider's REST API.
	HTTPGateway struct {
		httpClient *http.Client
		baseURL    string
		provider   string
		secret     string
		metrics    metric.Gateway
		log        logger.Logger
	}
)

func NewHTTPGateway(cfg *config.Gateway, metrics metric.Gateway, log logger.Logger) *HTTPGateway {
	return &HTTPGateway{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		provider:   cfg.Provider,
		secret:     cfg.Secret,
		metrics:    metrics,
		log:        log,
	}
}

func (g *HTTPGateway) Provider() string {
	return g.provider
}

// Initiate registers the order with the payment provider and returns the
// redirect URL for the buyer. Any failure maps to ErrGatewayUnavailable:
// the order stays in created and the buyer may retry checkout.
func (g *HTTPGateway) Initiate(
	ctx context.Context,
	orderID uuid.UUID,
	amount uint64,
	currency string,
) (*InitiateResult, error) {
	const op = "gateway.Initiate"

	start := time.Now()
	defer func() {
		g.metrics.ObserveDuration("initiate", time.Since(start))
	}()

	payload, err := json.Marshal(map[string]any{
		"order_id": orderID.String(),
		"amount":   amount,
		"currency": currency,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, g.baseURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Signature(g.secret, payload))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.metrics.IncrementFailures("initiate")
		return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		g.metrics.IncrementFailures("initiate")
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		g.metrics.IncrementFailures("initiate")
		g.log.Warnw("gateway initiate rejected",
			"op", op,
			"order_uid", orderID.String(),
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%s: %w: status %d", op, entity.ErrGatewayUnavailable, resp.StatusCode)
	}

	var result InitiateResult
	if err := json.Unmarshal(body, &result); err != nil {
		g.metrics.IncrementFailures("initiate")
		return nil, fmt.Errorf("%s: unmarshal response: %w", op, err)
	}
	if result.PaymentID == "" || result.PaymentURL == "" {
		g.metrics.IncrementFailures("initiate")
		return nil, fmt.Errorf("%s: %w: incomplete initiate response", op, entity.ErrGatewayUnavailable)
	}

	return &result, nil
}

// Status looks up the provider's current view of a payment. Used by the
// fallback confirmation path to re-derive the true outcome instead of
// trusting the client's claim.
func (g *HTTPGateway) Status(ctx context.Context, paymentID string) (*StatusResult, error) {
	const op = "gateway.Status"

	start := time.Now()
	defer func() {
		g.metrics.ObserveDuration("status", time.Since(start))
	}()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, g.baseURL+"/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("X-Signature", Signature(g.secret, []byte(paymentID)))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.metrics.IncrementFailures("status")
		return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: payment %s: %w", op, paymentID, entity.ErrDataNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		g.metrics.IncrementFailures("status")
		return nil, fmt.Errorf("%s: %w: status %d", op, entity.ErrGatewayUnavailable, resp.StatusCode)
	}

	var result StatusResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		g.metrics.IncrementFailures("status")
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	return &result, nil
}

// Signature is the HMAC-SHA256 hex digest shared with the provider. Inbound
// webhooks must carry it over the raw body; see transport/http middleware.
func Signature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret string, payload []byte, signature string) bool {
	expected := Signature(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
