package dlq_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bloomshop/internal/config"
	"bloomshop/pkg/kafka/dlq"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func newTestDLQ(t *testing.T, opts ...dlq.Option) *dlq.DLQ {
	t.Helper()

	cfg := config.DLQ{
		Brokers:      []string{"localhost:9092"},
		Topic:        "notifications.dead-letter",
		BatchSize:    1,
		BatchTimeout: time.Second,
		WriteTimeout: time.Second,
		ReadTimeout:  time.Second,
	}

	d, err := dlq.NewDLQ(cfg, logger.NewNop(), metric.NewFactory().DLQ(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func TestRetryThenPark_FirstAttemptDelivers(t *testing.T) {
	t.Parallel()

	d := newTestDLQ(t,
		dlq.MaxAttemptsCount(3),
		dlq.BaseRetryDelay(time.Millisecond),
		dlq.MaxRetryDelay(5*time.Millisecond),
	)

	var attempts int
	delivered, err := d.RetryThenPark(context.Background(), kafka.Message{}, 0,
		func(ctx context.Context) error {
			attempts++
			return nil
		})

	require.NoError(t, err)
	require.True(t, delivered)
	require.Equal(t, 1, attempts)
}

func TestRetryThenPark_RecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	d := newTestDLQ(t,
		dlq.MaxAttemptsCount(3),
		dlq.BaseRetryDelay(time.Millisecond),
		dlq.MaxRetryDelay(5*time.Millisecond),
	)

	var attempts int
	delivered, err := d.RetryThenPark(context.Background(), kafka.Message{}, 2,
		func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("telegram down")
			}
			return nil
		})

	require.NoError(t, err)
	require.True(t, delivered)
	require.Equal(t, 3, attempts)
}

func TestRetryThenPark_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	d := newTestDLQ(t,
		dlq.MaxAttemptsCount(5),
		dlq.BaseRetryDelay(50*time.Millisecond),
		dlq.MaxRetryDelay(time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())

	delivered, err := d.RetryThenPark(ctx, kafka.Message{}, 0,
		func(ctx context.Context) error {
			cancel()
			return errors.New("telegram down")
		})

	require.ErrorIs(t, err, context.Canceled)
	require.False(t, delivered)
}
