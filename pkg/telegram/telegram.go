package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	_defaultAPIBaseURL     = "https://api.telegram.org"
	_defaultRequestTimeout = 5 * time.Second
	_defaultRetryDelay     = 500 * time.Millisecond

	_maxAttempts = 2
)

var (
	// ErrDelivery means the message was not delivered after all attempts.
	ErrDelivery = errors.New("message delivery failed")

	// ErrBadRequest is a terminal rejection by the bot API (malformed
	// request, bad credentials, bad chat). Never retried.
	ErrBadRequest = errors.New("bot api rejected request")
)

// Client sends messages to a single chat through the Telegram bot API.
type Client struct {
	httpClient *http.Client
	token      string
	chatID     int64
	threadID   int
	baseURL    string

	requestTimeout time.Duration
	retryDelay     time.Duration
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	MessageThreadID       int    `json:"message_thread_id,omitempty"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func NewClient(token string, chatID int64, opts ...Option) (*Client, error) {
	c := &Client{
		token:          token,
		chatID:         chatID,
		baseURL:        _defaultAPIBaseURL,
		requestTimeout: _defaultRequestTimeout,
		retryDelay:     _defaultRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("telegram.NewClient: validation: %w", err)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.requestTimeout}
	}

	return c, nil
}

// SendMessage delivers text to the configured chat. A retryable failure
// (5xx, network error, timeout) gets exactly one extra attempt; a terminal
// failure (4xx) gets none. The returned error wraps ErrDelivery either way.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	const op = "telegram.SendMessage"

	var lastErr error
	for attempt := 1; attempt <= _maxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: %w: %w", op, ErrDelivery, ctx.Err())
			}
		}

		err := c.sendOnce(ctx, text)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrBadRequest) {
			return fmt.Errorf("%s: %w: %w", op, ErrDelivery, err)
		}
		lastErr = err
	}

	return fmt.Errorf("%s: %w after %d attempts: %w", op, ErrDelivery, _maxAttempts, lastErr)
}

func (c *Client) sendOnce(ctx context.Context, text string) error {
	const op = "telegram.sendOnce"

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                c.chatID,
		MessageThreadID:       c.threadID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		return fmt.Errorf("%s: %w: status %d: %s",
			op, ErrBadRequest, resp.StatusCode, apiDescription(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d: %s",
			op, resp.StatusCode, apiDescription(respBody))
	}

	return nil
}

func apiDescription(body []byte) string {
	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil || api.Description == "" {
		return "no description"
	}
	return api.Description
}
