package poller_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bloomshop/pkg/poller"

	"github.com/stretchr/testify/require"
)

const testOrderUID = "8b171b5e-7f0a-4c5a-9d2e-1f3a5b7c9d0e"

func newTestPoller(t *testing.T, handler http.Handler, opts ...poller.Option) *poller.Poller {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []poller.Option{
		poller.Interval(10 * time.Millisecond),
		poller.MaxAttempts(5),
		poller.ConfirmAfter(2),
	}

	p, err := poller.New(srv.URL, append(base, opts...)...)
	require.NoError(t, err)

	return p
}

func statusBody(status string) string {
	return fmt.Sprintf(
		`{"order_uid":%q,"status":%q,"amount":430000,"currency":"RUB"}`,
		testOrderUID, status,
	)
}

func TestAwait_TerminalOnFirstPoll(t *testing.T) {
	var polls atomic.Int32
	p := newTestPoller(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		w.Write([]byte(statusBody("paid")))
	}))

	status, err := p.Await(context.Background(), testOrderUID, "success")
	require.NoError(t, err)
	require.Equal(t, "paid", status.Status)
	require.EqualValues(t, 1, polls.Load())
}

func TestAwait_ConfirmFiredWhenWebhookOverdue(t *testing.T) {
	var confirms atomic.Int32
	var polls atomic.Int32

	p := newTestPoller(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			confirms.Add(1)
			w.Write([]byte(statusBody("payment_pending")))
			return
		}

		// Terminal only after the confirm nudge has landed.
		if polls.Add(1) > 3 && confirms.Load() > 0 {
			w.Write([]byte(statusBody("paid")))
			return
		}
		w.Write([]byte(statusBody("payment_pending")))
	}))

	status, err := p.Await(context.Background(), testOrderUID, "success")
	require.NoError(t, err)
	require.Equal(t, "paid", status.Status)
	require.EqualValues(t, 1, confirms.Load())
}

func TestAwait_SilentGiveUpKeepsLastStatus(t *testing.T) {
	p := newTestPoller(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statusBody("payment_pending")))
	}))

	status, err := p.Await(context.Background(), testOrderUID, "")
	require.NoError(t, err)
	require.NotNil(t, status)
	require.Equal(t, "payment_pending", status.Status)
}

func TestAwait_TransientErrorsAreSkipped(t *testing.T) {
	var polls atomic.Int32
	p := newTestPoller(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusOK)
			return
		}
		if polls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(statusBody("failed")))
	}))

	status, err := p.Await(context.Background(), testOrderUID, "failure")
	require.NoError(t, err)
	require.Equal(t, "failed", status.Status)
}

func TestAwait_ContextCanceled(t *testing.T) {
	p := newTestPoller(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statusBody("payment_pending")))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Await(ctx, testOrderUID, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validation(t *testing.T) {
	_, err := poller.New("")
	require.Error(t, err)

	_, err = poller.New("http://localhost", poller.Interval(0))
	require.Error(t, err)

	_, err = poller.New("http://localhost", poller.MaxAttempts(2), poller.ConfirmAfter(5))
	require.Error(t, err)
}
