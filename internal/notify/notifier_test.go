package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"bloomshop/internal/notify"
	mock_notify "bloomshop/internal/notify/mock"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) (*notify.Notifier, *mock_notify.MockMessageSender, *mock_notify.MockDeadLetter) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	sender := mock_notify.NewMockMessageSender(ctrl)
	deadLetter := mock_notify.NewMockDeadLetter(ctrl)

	n := notify.NewNotifier(
		sender,
		deadLetter,
		metric.NewFactory().Notify(),
		logger.NewNop(),
	)

	return n, sender, deadLetter
}

func TestNotify_SendsRenderedMessage(t *testing.T) {
	t.Parallel()

	n, sender, _ := newTestNotifier(t)
	order := sampleOrder()

	var sent string
	sender.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, text string) error {
			sent = text
			return nil
		}).Times(1)

	err := n.Notify(context.Background(), order, notify.KindPaymentSuccess, "")
	require.NoError(t, err)
	require.Equal(t, notify.Format(order, notify.KindPaymentSuccess, ""), sent)
}

func TestNotify_FailedSendIsParkedVerbatim(t *testing.T) {
	t.Parallel()

	n, sender, deadLetter := newTestNotifier(t)
	order := sampleOrder()
	sendErr := errors.New("telegram down")

	sender.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		Return(sendErr).Times(1)

	var parked kafka.Message
	deadLetter.EXPECT().Send(gomock.Any(), gomock.Any(), sendErr, 0).
		DoAndReturn(func(ctx context.Context, msg kafka.Message, err error, retryCount int) error {
			parked = msg
			return nil
		}).Times(1)

	err := n.Notify(context.Background(), order, notify.KindOrderCreated, "")
	require.Error(t, err)

	var env notify.Envelope
	require.NoError(t, json.Unmarshal(parked.Value, &env))
	require.Equal(t, order.ID.String(), env.OrderUID)
	require.Equal(t, notify.KindOrderCreated, env.Kind)

	// The parked text is the already-rendered message, so redelivery does
	// not re-render a possibly changed order.
	require.Equal(t, notify.Format(order, notify.KindOrderCreated, ""), env.Text)
	require.Equal(t, []byte(order.ID.String()), parked.Key)
}

func TestNotify_ParkingFailureDoesNotPanic(t *testing.T) {
	t.Parallel()

	n, sender, deadLetter := newTestNotifier(t)
	order := sampleOrder()

	sender.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		Return(errors.New("telegram down")).Times(1)
	deadLetter.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), 0).
		Return(errors.New("kafka down")).Times(1)

	err := n.Notify(context.Background(), order, notify.KindPaymentFailed, "card_declined")
	require.Error(t, err)
}

func TestNotify_NilDeadLetterSkipsParking(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	sender := mock_notify.NewMockMessageSender(ctrl)

	n := notify.NewNotifier(sender, nil, metric.NewFactory().Notify(), logger.NewNop())

	sender.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		Return(errors.New("telegram down")).Times(1)

	err := n.Notify(context.Background(), sampleOrder(), notify.KindOrderCreated, "")
	require.Error(t, err)
}
