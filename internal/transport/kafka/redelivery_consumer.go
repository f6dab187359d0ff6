package kafkat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bloomshop/internal/notify"
	"bloomshop/pkg/kafka/dlq"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

const _defaultSendTimeout = 10 * time.Second

// RedeliveryConsumer drains the notification dead-letter topic and re-sends
// parked messages to the staff channel. A message that fails again goes back
// to the topic with an incremented retry count; past maxRetries it is dropped
// with an error log.
type RedeliveryConsumer struct {
	reader       *kafka.Reader
	deadLetter   *dlq.DLQ
	sender       notify.MessageSender
	metrics      metric.Notify
	kafkaMetrics metric.Kafka
	maxRetries   int
	log          logger.Logger
}

func NewRedeliveryConsumer(
	reader *kafka.Reader,
	deadLetter *dlq.DLQ,
	sender notify.MessageSender,
	metrics metric.Notify,
	kafkaMetrics metric.Kafka,
	maxRetries int,
	log logger.Logger,
) *RedeliveryConsumer {
	return &RedeliveryConsumer{
		reader:       reader,
		deadLetter:   deadLetter,
		sender:       sender,
		metrics:      metrics,
		kafkaMetrics: kafkaMetrics,
		maxRetries:   maxRetries,
		log:          log,
	}
}

func (c *RedeliveryConsumer) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return c.run(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()
		c.log.Infow("shutting down redelivery consumer")
		return c.reader.Close()
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("transport.kafka.redelivery_consumer.Start: %w", err)
	}
	return nil
}

func (c *RedeliveryConsumer) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("transport.kafka.redelivery_consumer.run: %w", err)
			}
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(ctx.Err(), context.Canceled) {
					return nil
				}
				c.log.Errorw("kafka read failed",
					"error", err,
				)
				continue
			}

			c.kafkaMetrics.MessageProcessed(msg.Topic, msg.Partition)
			c.processMessage(ctx, msg)
		}
	}
}

func (c *RedeliveryConsumer) processMessage(ctx context.Context, msg kafka.Message) {
	const op = "transport.kafka.redelivery_consumer.processMessage"

	var parked struct {
		Metadata struct {
			RetryCount int `json:"retry_count"`
		} `json:"metadata"`
		Payload string `json:"payload"`
	}

	if err := json.Unmarshal(msg.Value, &parked); err != nil {
		c.log.Errorw("unmarshal dead-letter wrapper",
			"op", op,
			"error", err,
			"offset", msg.Offset,
		)
		return
	}

	if parked.Metadata.RetryCount >= c.maxRetries {
		c.kafkaMetrics.MessageFailed(msg.Topic, msg.Partition, "retry_limit_exceeded")
		c.log.Errorw("dropping notification after max redelivery attempts",
			"op", op,
			"offset", msg.Offset,
			"retry_count", parked.Metadata.RetryCount,
		)
		return
	}

	var env notify.Envelope
	if err := json.Unmarshal([]byte(parked.Payload), &env); err != nil {
		c.log.Errorw("unmarshal notification envelope",
			"op", op,
			"error", err,
			"offset", msg.Offset,
		)
		return
	}

	delivered, err := c.deadLetter.RetryThenPark(ctx,
		kafka.Message{Key: msg.Key, Value: []byte(parked.Payload)},
		parked.Metadata.RetryCount,
		func(ctx context.Context) error {
			sendCtx, cancel := context.WithTimeout(ctx, _defaultSendTimeout)
			defer cancel()
			return c.sender.SendMessage(sendCtx, env.Text)
		},
	)
	if err != nil {
		c.log.Errorw("critical: failed to park notification again",
			"op", op,
			"order_uid", env.OrderUID,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}
	if !delivered {
		c.log.Warnw("redelivery failed, parked again",
			"op", op,
			"order_uid", env.OrderUID,
			"kind", string(env.Kind),
			"retry_count", parked.Metadata.RetryCount,
		)
		return
	}

	c.metrics.Redelivered(string(env.Kind))

	c.log.Infow("parked notification redelivered",
		"op", op,
		"order_uid", env.OrderUID,
		"kind", string(env.Kind),
		"retry_count", parked.Metadata.RetryCount,
	)
}
