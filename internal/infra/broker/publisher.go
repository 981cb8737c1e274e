// Package broker публикует события бронирований в RabbitMQ (fanout exchange).
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/events"
)

const (
	// dialTimeout таймаут TCP подключения к брокеру
	dialTimeout = 3 * time.Second

	// redialBackoff пауза после неудачного подключения, в течение которой Publish сразу возвращает ErrUnavailable
	redialBackoff = 5 * time.Second

	heartbeat = 10 * time.Second
)

type dialFunc func(url string) (*amqp.Connection, error)

func dialWithTimeout(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
}

// Publisher держит одно соединение и канал, переподключается лениво при следующей публикации
type Publisher struct {
	url      string
	exchange string
	logger   Logger
	dial     dialFunc
	now      func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

// NewPublisher создает publisher. Соединение открывается при первой публикации.
func NewPublisher(url, exchange string, logger Logger) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
		logger:   logger,
		dial:     dialWithTimeout,
		now:      time.Now,
	}
}

// Publish отправляет событие с routing key = тип события
func (p *Publisher) Publish(ctx context.Context, event *domain.BookingEvent) error {
	body, err := json.Marshal(events.FromDomainEvent(event))
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublish, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		p.exchange,
		string(event.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.reset()
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return nil
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.ch = nil, nil
	return err
}

// channel возвращает открытый канал, при необходимости переподключаясь. Вызывается под p.mu.
// После неудачного подключения новые попытки не делаются до p.retryAt.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if now := p.now(); now.Before(p.retryAt) {
		return nil, fmt.Errorf("%w: reconnect in %s", ErrUnavailable, p.retryAt.Sub(now).Round(time.Millisecond))
	}

	conn, err := p.dial(p.url)
	if err != nil {
		p.retryAt = p.now().Add(redialBackoff)
		return nil, fmt.Errorf("%w: dial: %v", ErrUnavailable, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.retryAt = p.now().Add(redialBackoff)
		return nil, fmt.Errorf("%w: open channel: %v", ErrUnavailable, err)
	}

	if err := ch.ExchangeDeclare(
		p.exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = conn.Close()
		p.retryAt = p.now().Add(redialBackoff)
		return nil, fmt.Errorf("%w: declare exchange %s: %v", ErrUnavailable, p.exchange, err)
	}

	p.conn, p.ch = conn, ch
	p.retryAt = time.Time{}
	p.logger.Info("Broker: connected, exchange=%s", p.exchange)
	return ch, nil
}

func (p *Publisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}
