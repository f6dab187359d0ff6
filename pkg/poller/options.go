package poller

import (
	"errors"
	"net/http"
	"time"
)

type Option func(*Poller)

func Interval(interval time.Duration) Option {
	return func(p *Poller) {
		p.interval = interval
	}
}

func MaxAttempts(count int) Option {
	return func(p *Poller) {
		p.maxAttempts = count
	}
}

func ConfirmAfter(attempts int) Option {
	return func(p *Poller) {
		p.confirmAfter = attempts
	}
}

func HTTPClient(client *http.Client) Option {
	return func(p *Poller) {
		p.httpClient = client
	}
}

func (p *Poller) validate() error {
	if p.baseURL == "" {
		return errors.New("invalid baseURL: must not be empty")
	}

	if p.interval <= 0 {
		return errors.New("invalid interval: must be > 0")
	}

	if p.maxAttempts <= 0 {
		return errors.New("invalid maxAttempts: must be > 0")
	}

	if p.confirmAfter <= 0 || p.confirmAfter > p.maxAttempts {
		return errors.New("invalid confirmAfter: must be in [1, maxAttempts]")
	}
	return nil
}
