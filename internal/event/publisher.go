package event

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Publisher emits events to a RabbitMQ topic exchange, using the event
// type as the routing key. Publishing happens on a background worker so
// a slow or broken broker never blocks the commit path.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger
	queue    chan envelope
	done     chan struct{}
}

type envelope struct {
	eventType string
	body      []byte
}

func NewPublisher(amqpURL, exchange string, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p := &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		log:      log.Named("events"),
		queue:    make(chan envelope, 256),
		done:     make(chan struct{}),
	}
	go p.pump()
	return p, nil
}

// Emit marshals and enqueues the event. If the queue is full the event
// is dropped rather than blocking the caller.
func (p *Publisher) Emit(eventType string, payload map[string]any) {
	body, err := json.Marshal(map[string]any{
		"type":      eventType,
		"payload":   payload,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		p.log.Warn("event marshal failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	select {
	case p.queue <- envelope{eventType: eventType, body: body}:
	default:
		p.log.Warn("event queue full, dropping", zap.String("type", eventType))
	}
}

func (p *Publisher) pump() {
	for {
		select {
		case env := <-p.queue:
			err := p.channel.Publish(p.exchange, env.eventType, false, false, amqp.Publishing{
				ContentType: "application/json",
				Body:        env.body,
			})
			if err != nil {
				p.log.Warn("event publish failed", zap.String("type", env.eventType), zap.Error(err))
			}
		case <-p.done:
			return
		}
	}
}

func (p *Publisher) Close() {
	close(p.done)
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
