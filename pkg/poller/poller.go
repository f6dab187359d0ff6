// Package poller implements the buyer-side payment confirmation loop used
// after the gateway redirect: poll the order status endpoint until the order
// reaches a terminal state, nudging the server's fallback confirmation once
// the webhook looks overdue.
package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	_defaultInterval     = 2 * time.Second
	_defaultMaxAttempts  = 15
	_defaultConfirmAfter = 3
)

type Poller struct {
	httpClient *http.Client
	baseURL    string

	interval     time.Duration
	maxAttempts  int
	confirmAfter int
}

// Status is the order status endpoint's response.
type Status struct {
	OrderUID string `json:"order_uid"`
	Status   string `json:"status"`
	Amount   uint64 `json:"amount"`
	Currency string `json:"currency"`
}

type confirmRequest struct {
	Outcome string `json:"outcome,omitempty"`
}

func New(baseURL string, opts ...Option) (*Poller, error) {
	p := &Poller{
		baseURL:      baseURL,
		interval:     _defaultInterval,
		maxAttempts:  _defaultMaxAttempts,
		confirmAfter: _defaultConfirmAfter,
	}

	for _, opt := range opts {
		opt(p)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("poller.New: validation: %w", err)
	}

	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: p.interval}
	}

	return p, nil
}

// Await polls the order status until it leaves payment_pending or the
// attempt budget runs out. After confirmAfter non-terminal polls it posts
// the fallback confirmation once, carrying the outcome the redirect page
// claimed, so the server re-checks the gateway even if the webhook is lost.
//
// An exhausted budget is not an error: the last observed status is returned
// and the caller decides what to show the buyer.
func (p *Poller) Await(ctx context.Context, orderUID, claimed string) (*Status, error) {
	const op = "poller.Await"

	var last *Status
	confirmed := false

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(p.interval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return last, fmt.Errorf("%s: %w", op, ctx.Err())
			}
		}

		status, err := p.fetchStatus(ctx, orderUID)
		if err != nil {
			// Transient; the next tick retries.
			continue
		}
		last = status

		if terminal(status.Status) {
			return status, nil
		}

		if !confirmed && attempt >= p.confirmAfter {
			p.confirm(ctx, orderUID, claimed)
			confirmed = true
		}
	}

	return last, nil
}

func (p *Poller) fetchStatus(ctx context.Context, orderUID string) (*Status, error) {
	const op = "poller.fetchStatus"

	url := fmt.Sprintf("%s/api/v1/orders/%s/status", p.baseURL, orderUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var status Status
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&status); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return &status, nil
}

// confirm is fire-and-forget: a failed nudge only delays the fallback, the
// polling loop keeps going either way.
func (p *Poller) confirm(ctx context.Context, orderUID, claimed string) {
	body, err := json.Marshal(confirmRequest{Outcome: claimed})
	if err != nil {
		return
	}

	url := fmt.Sprintf("%s/api/v1/orders/%s/confirm", p.baseURL, orderUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func terminal(status string) bool {
	switch status {
	case "paid", "failed", "canceled":
		return true
	default:
		return false
	}
}
