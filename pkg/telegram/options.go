package telegram

import (
	"errors"
	"net/http"
	"time"
)

type Option func(*Client)

func APIBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func ThreadID(id int) Option {
	return func(c *Client) {
		c.threadID = id
	}
}

func RequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = timeout
	}
}

func RetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

func HTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func (c *Client) validate() error {
	if c.token == "" {
		return errors.New("invalid token: must not be empty")
	}

	if c.chatID == 0 {
		return errors.New("invalid chatID: must not be zero")
	}

	if c.baseURL == "" {
		return errors.New("invalid baseURL: must not be empty")
	}

	if c.requestTimeout <= 0 {
		return errors.New("invalid requestTimeout: must be > 0")
	}

	if c.retryDelay <= 0 {
		return errors.New("invalid retryDelay: must be > 0")
	}
	return nil
}
