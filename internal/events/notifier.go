package events

import (
	"context"
	"errors"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

const (
	sinkWebsocket = "websocket"
	sinkBroker    = "rabbitmq"
)

var errHubBusy = errors.New("events: hub queue is full")

// Notifier рассылает закоммиченные события. Доставка best-effort:
// журнал событий в БД остается источником истины, клиенты догоняют через /events?since.
type Notifier struct {
	hub       *Hub
	publisher Publisher
	metrics   MetricsRecorder
	logger    Logger
}

// NewNotifier создает рассыльщик. publisher и metrics могут быть nil.
func NewNotifier(hub *Hub, publisher Publisher, metrics MetricsRecorder, logger Logger) *Notifier {
	return &Notifier{
		hub:       hub,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Notify доставляет события в порядке seq
func (n *Notifier) Notify(ctx context.Context, events ...*domain.BookingEvent) {
	for _, event := range events {
		data, err := Encode(event)
		if err != nil {
			n.logger.Error("Notify: failed to encode event seq=%d: %v", event.Seq, err)
			continue
		}

		var hubErr error
		if !n.hub.Broadcast(data) {
			hubErr = errHubBusy
			n.logger.Warn("Notify: hub queue is full, event seq=%d not broadcast", event.Seq)
		}
		n.record(sinkWebsocket, hubErr)

		if n.publisher == nil {
			continue
		}
		if err := n.publisher.Publish(ctx, event); err != nil {
			n.logger.Warn("Notify: failed to publish event seq=%d to broker: %v", event.Seq, err)
			n.record(sinkBroker, err)
			continue
		}
		n.record(sinkBroker, nil)
	}
}

func (n *Notifier) record(sink string, err error) {
	if n.metrics != nil {
		n.metrics.RecordPublish(sink, err)
	}
}
