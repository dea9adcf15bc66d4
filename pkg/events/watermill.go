// Package events carries item lifecycle events from the API to the worker
// over PostgreSQL tables managed by Watermill's SQL transport.
//
// The item repository calls PublishTx inside the transaction that writes the
// item row, so an event exists exactly when the write committed. The API runs
// in forwarder mode: PublishTx only appends to an outbox queue and the
// forwarder daemon moves queued events to their item topics. cmd/worker
// subscribes to those topics with a consumer group per service, so each event
// is handled by one worker instance.
//
// Trace context rides in message metadata and is restored on the worker side.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v4/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/stockhub/pkg/config"
	"github.com/ghuser/stockhub/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	errBuffer       = 100

	outboxTopic         = "_forwarder_queue"
	outboxConsumerGroup = "forwarder-consumer"
)

// Handler processes one delivered event. A non-nil error triggers a retry.
type Handler func(context.Context, *message.Message) error

// EventBus publishes item events inside repository transactions and delivers
// them to worker handlers.
type EventBus struct {
	db            *sql.DB
	subscriber    *watermillsql.Subscriber
	consumerGroup string
	outbox        bool
	fwd           *forwarder.Forwarder
	log           logger.Logger
	wg            sync.WaitGroup
}

// NewEventBus opens the event store for a consumer such as cmd/worker.
// Instances sharing cfg.ServiceName split the events between them.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, false)
}

// NewEventBusWithForwarder opens the event store for the API. PublishTx
// writes to the outbox queue, and StartForwarder must run for events to reach
// their topics.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, true)
}

func newEventBus(cfg *config.Config, log logger.Logger, outbox bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	group := cfg.ServiceName + "-consumer"
	sub, err := newSubscriber(db, group, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	return &EventBus{
		db:            db,
		subscriber:    sub,
		consumerGroup: group,
		outbox:        outbox,
		log:           log,
	}, nil
}

func newSubscriber(db *sql.DB, group string, log logger.Logger) (*watermillsql.Subscriber, error) {
	return watermillsql.NewSubscriber(
		watermillsql.BeginnerFromStdSQL(db),
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    group,
		},
		&slogAdapter{log: log},
	)
}

// StartForwarder runs the daemon that drains the outbox queue into the item
// topics. It returns once the daemon is running and stops with ctx.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.outbox {
		return fmt.Errorf("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	wlog := &slogAdapter{log: q.log}

	// Subscribing creates the outbox table that PublishTx writes into.
	queue, err := newSubscriber(q.db, outboxConsumerGroup, q.log)
	if err != nil {
		return fmt.Errorf("events: new outbox subscriber: %w", err)
	}
	topics, err := watermillsql.NewPublisher(
		watermillsql.BeginnerFromStdSQL(q.db),
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		wlog,
	)
	if err != nil {
		_ = queue.Close()
		return fmt.Errorf("events: new topic publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(queue, topics, wlog, forwarder.Config{
		ForwarderTopic: outboxTopic,
	})
	if err != nil {
		_ = topics.Close()
		_ = queue.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// PublishTx writes msgs for topic inside tx with the trace context of ctx.
// The rows commit or roll back with the item write. In forwarder mode they
// are wrapped for the outbox queue instead of going to topic directly.
func (q *EventBus) PublishTx(ctx context.Context, tx pgx.Tx, topic string, msgs ...*message.Message) error {
	// The target tables already exist: StartForwarder created the outbox,
	// and in direct mode the topic belongs to a subscribed worker.
	pub, err := watermillsql.NewPublisher(
		watermillsql.TxFromPgx(tx),
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: false,
		},
		&slogAdapter{log: q.log},
	)
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}

	var out message.Publisher = pub
	if q.outbox {
		out = forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: outboxTopic})
	}

	injectTrace(ctx, msgs)
	if err := out.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s in tx: %w", topic, err)
	}
	return nil
}

// Subscribe delivers events on topic to handler until ctx ends or the bus
// closes. A handler error is retried with exponential backoff (1s, 2s); after
// the last attempt the message is Nacked and the error is sent on the
// returned channel, which the caller must drain.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBuffer)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			msgCtx := extractTrace(ctx, msg)
			if err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, q.log); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic, "group", q.consumerGroup)
				}
				continue
			}
			msg.Ack()
		}
	}()

	return errCh, nil
}

func injectTrace(ctx context.Context, msgs []*message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
}

// extractTrace returns ctx carrying the publisher's span from msg metadata.
func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Metadata))
}

// retryWithBackoff calls handler up to attempts times, doubling the delay
// after each failure.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	attempts int,
	delay time.Duration,
	log logger.Logger,
) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"message_uuid", msg.UUID,
			"attempt", attempt,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", attempts, err)
}

// Ping reports whether the event store is reachable. /health uses it.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops delivery, then the forwarder, waits up to shutdownTimeout for
// running handlers and closes the database handle.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	return q.db.Close()
}

// slogAdapter lets Watermill log through logger.Logger.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
