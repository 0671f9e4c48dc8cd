package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/config"
)

// Publisher announces catalog changes.
type Publisher interface {
	PublishMovieChanged(ctx context.Context, ev MovieChangedEvent) error
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishMovieChanged(context.Context, MovieChangedEvent) error { return nil }

// AMQPPublisher publishes to a fanout exchange. Each publish opens its own
// connection; mutations are rare admin actions.
type AMQPPublisher struct {
	cfg config.EventsConfig
	log *zap.Logger
}

func NewAMQPPublisher(cfg config.EventsConfig, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{cfg: cfg, log: log.Named("events")}
}

// PublishMovieChanged never panics; failures are logged and returned so the
// caller can ignore them.
func (p *AMQPPublisher) PublishMovieChanged(ctx context.Context, ev MovieChangedEvent) error {
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		p.log.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declareExchange(ch, p.cfg.Exchange); err != nil {
		p.log.Warn("exchange declare failed", zap.Error(err))
		return err
	}

	pub, err := publishing(ev)
	if err != nil {
		p.log.Warn("marshal event failed", zap.Error(err))
		return err
	}
	if err := ch.PublishWithContext(ctx, p.cfg.Exchange, RoutingKeyMovieChanged, false, false, pub); err != nil {
		p.log.Warn("publish failed", zap.Error(err))
		return err
	}
	p.log.Debug("published movie change", zap.String("movie_id", ev.MovieID), zap.String("action", ev.Action))
	return nil
}

func declareExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,     // name
		"fanout", // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
}

func publishing(ev MovieChangedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         RoutingKeyMovieChanged,
		Body:         body,
	}, nil
}
