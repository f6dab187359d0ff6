package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"bloomshop/internal/entity"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"

	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=notifier.go -destination=mock/notifier.go -package=mock_notify

type (
	// MessageSender delivers a rendered message to the staff channel.
	MessageSender interface {
		SendMessage(ctx context.Context, text string) error
	}

	// DeadLetter keeps undeliverable notifications for redelivery.
	DeadLetter interface {
		Send(ctx context.Context, originalMsg kafka.Message, err error, retryCount int) error
	}

	Notifier struct {
		sender     MessageSender
		deadLetter DeadLetter
		metrics    metric.Notify
		log        logger.Logger
	}
)

// Envelope is the dead-letter payload for a failed notification. The text is
// carried verbatim so redelivery never re-renders a possibly changed order.
type Envelope struct {
	OrderUID string `json:"order_uid"`
	Kind     Kind   `json:"kind"`
	Text     string `json:"text"`
}

func NewNotifier(
	sender MessageSender,
	deadLetter DeadLetter,
	metrics metric.Notify,
	log logger.Logger,
) *Notifier {
	return &Notifier{
		sender:     sender,
		deadLetter: deadLetter,
		metrics:    metrics,
		log:        log,
	}
}

// Notify renders and sends the notification for an applied transition.
//
// Delivery failure is returned to the caller for logging only; by the time
// Notify runs the status transition is already committed and must not be
// rolled back. An exhausted send is parked in the dead-letter queue so the
// message is delayed, not lost.
func (n *Notifier) Notify(
	ctx context.Context,
	order *entity.Order,
	kind Kind,
	reason string,
) error {
	const op = "notify.Notify"
	log := n.log.Ctx(ctx)

	text := Format(order, kind, reason)

	if err := n.sender.SendMessage(ctx, text); err != nil {
		n.metrics.Failed(string(kind))

		log.LogAttrs(ctx, logger.ErrorLevel, "notification delivery failed",
			logger.String("op", op),
			logger.String("order_uid", order.ID.String()),
			logger.String("kind", string(kind)),
			logger.Any("error", err),
		)

		n.parkForRedelivery(ctx, order, kind, text, err)

		return fmt.Errorf("%s: send message: %w", op, err)
	}

	n.metrics.Sent(string(kind))

	log.LogAttrs(ctx, logger.InfoLevel, "notification sent",
		logger.String("op", op),
		logger.String("order_uid", order.ID.String()),
		logger.String("kind", string(kind)),
	)

	return nil
}

func (n *Notifier) parkForRedelivery(
	ctx context.Context,
	order *entity.Order,
	kind Kind,
	text string,
	cause error,
) {
	const op = "notify.parkForRedelivery"

	if n.deadLetter == nil {
		return
	}

	value, err := json.Marshal(Envelope{
		OrderUID: order.ID.String(),
		Kind:     kind,
		Text:     text,
	})
	if err != nil {
		n.log.Errorw("failed to marshal notification envelope",
			"op", op,
			"order_uid", order.ID.String(),
			"error", err,
		)
		return
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: value,
	}

	if err := n.deadLetter.Send(ctx, msg, cause, 0); err != nil {
		// Both the send and the parking failed. Log loudly: this is the
		// one path where a notification can actually be lost.
		n.log.Errorw("critical: failed to park notification for redelivery",
			"op", op,
			"order_uid", order.ID.String(),
			"kind", string(kind),
			"error", err,
		)
	}
}
