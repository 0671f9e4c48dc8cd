package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/config"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, ev MovieChangedEvent) error

// Invalidator drops cached search pages.
type Invalidator interface {
	InvalidateMovies(ctx context.Context) error
}

// InvalidateOnChange returns a Handler that clears the search cache for every
// event published by another instance. The local instance already
// invalidated before publishing.
func InvalidateOnChange(inv Invalidator, self string, log *zap.Logger) Handler {
	return func(ctx context.Context, ev MovieChangedEvent) error {
		if ev.Source == self {
			return nil
		}
		if err := inv.InvalidateMovies(ctx); err != nil {
			return fmt.Errorf("invalidate search cache: %w", err)
		}
		log.Info("movie changed",
			zap.String("movie_id", ev.MovieID),
			zap.String("action", ev.Action),
			zap.String("source", ev.Source),
		)
		return nil
	}
}

// Consumer subscribes an exclusive, server-named queue to the events
// exchange and hands each event to a Handler.
type Consumer struct {
	cfg     config.EventsConfig
	handler Handler
	log     *zap.Logger
}

func NewConsumer(cfg config.EventsConfig, h Handler, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{cfg: cfg, handler: h, log: log.Named("events")}
}

// Run keeps a subscription alive, reconnecting with exponential backoff,
// until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.cfg.URL)
		if err != nil {
			c.log.Warn("dial failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}
	if err := declareExchange(ch, c.cfg.Exchange); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, RoutingKeyMovieChanged, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.log.Warn("handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	ev, err := decodeMovieChanged(body)
	if err != nil {
		return err
	}
	return c.handler(ctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
