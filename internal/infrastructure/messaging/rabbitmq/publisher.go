package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/electroworld/auth-service/internal/application/auth"
)

const (
	DefaultExchange   = "electroworld.notifications"
	ResetCodeRouteKey = "auth.password.reset.code"

	defaultConfirmWait = 2 * time.Second
)

// notificationMessage is the wire form consumed by the mailer.
type notificationMessage struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// Publisher is a NotificationSender that hands messages to RabbitMQ in
// confirm mode. A message counts as sent only once the broker acks it and
// did not return it as unroutable.
type Publisher struct {
	url         string
	exchange    string
	routingKey  string
	confirmWait time.Duration

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{
		url:         url,
		exchange:    exchange,
		routingKey:  ResetCodeRouteKey,
		confirmWait: defaultConfirmWait,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetConn()
	return nil
}

// ---- auth.NotificationSender ----

func (p *Publisher) Send(ctx context.Context, n auth.Notification) error {
	body, err := encodeNotification(n, time.Now())
	if err != nil {
		return err
	}
	return p.publish(ctx, p.routingKey, body)
}

func encodeNotification(n auth.Notification, at time.Time) ([]byte, error) {
	body, err := json.Marshal(notificationMessage{
		Recipient: n.Recipient,
		Subject:   n.Subject,
		Body:      n.Body,
		SentAt:    at.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return body, nil
}

// ---- internal ----

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	return p.connect()
}

func (p *Publisher) publish(ctx context.Context, routingKey string, body []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.confirmWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}

	// Drain stale confirms/returns so results are not mixed up.
drain:
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			break drain
		}
	}

	// Transient: the body carries a plaintext reset code and must not hit the broker's disk.
	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		p.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	select {
	case ret := <-p.returnCh:
		return unroutable(routingKey, ret)

	case conf := <-p.confirmCh:
		// The broker sends basic.return before basic.ack; the client delivers
		// frames in order, so a return for this publish is already buffered.
		select {
		case ret := <-p.returnCh:
			return unroutable(routingKey, ret)
		default:
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-ctx.Done():
		return fmt.Errorf("rabbitmq confirm wait: key=%s: %w", routingKey, ctx.Err())
	}
}

func unroutable(routingKey string, ret amqp.Return) error {
	return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
