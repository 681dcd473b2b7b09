package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrDuplicate is returned by an Idempotent handler for an event that has
// already been processed. The consumer commits such messages without
// counting them as processed.
var ErrDuplicate = errors.New("duplicate event")

// Handler processes one event.
type Handler func(ctx context.Context, event *Event) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topics     []string
	MaxRetries int
	RetryDelay time.Duration
}

// Consumer reads events from one or more topics in a consumer group. Each
// message is retried with linear backoff, then dead-lettered (when a
// DeadLetterer is set) and committed.
type Consumer struct {
	reader     messageReader
	group      string
	handler    Handler
	dlq        DeadLetterer
	metrics    *Metrics
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	closeOnce  sync.Once
}

// NewConsumer builds a consumer. dlq and metrics may be nil.
func NewConsumer(cfg ConsumerConfig, handler Handler, dlq DeadLetterer, metrics *Metrics, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return newConsumer(r, cfg, handler, dlq, metrics, logger)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, dlq DeadLetterer, metrics *Metrics, logger *slog.Logger) *Consumer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	return &Consumer{
		reader:     r,
		group:      cfg.GroupID,
		handler:    handler,
		dlq:        dlq,
		metrics:    metrics,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// Run consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("group", c.group))
	defer func() { _ = c.Close() }()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("group", c.group))
				return nil
			}
			c.logger.Error("fetch message failed", slog.String("error", err.Error()))
			if sErr := sleep(ctx, c.retryDelay); sErr != nil {
				return nil
			}
			continue
		}
		c.process(ctx, msg)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	c.metrics.count(outcomeReceived, msg.Topic, c.group)
	ctx = extractTrace(ctx, msg.Headers)

	event, err := ParseEvent(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "undecodable message",
			slog.String("topic", msg.Topic), slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
		c.deadLetter(ctx, msg, err)
		c.commit(ctx, msg)
		return
	}

	ctx, span := otel.Tracer("github.com/Akshaybondre123/First-Startup/pkg/kafka").Start(ctx, "consume "+event.Type,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.String("messaging.consumer.group.name", c.group),
		),
	)
	defer span.End()

	start := time.Now()
	err = c.handle(ctx, msg, event)
	c.metrics.observeHandler(msg.Topic, c.group, time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.count(outcomeProcessed, msg.Topic, c.group)
	case errors.Is(err, ErrDuplicate):
		c.metrics.count(outcomeDuplicate, msg.Topic, c.group)
	case ctx.Err() != nil:
		// Shutting down mid-retry; leave the offset uncommitted.
		return
	default:
		span.RecordError(err)
		c.metrics.count(outcomeFailed, msg.Topic, c.group)
		c.logger.ErrorContext(ctx, "handler failed after retries",
			slog.String("event_type", event.Type),
			slog.String("aggregate_id", event.AggregateID),
			slog.Int("retries", c.maxRetries),
			slog.String("error", err.Error()),
		)
		c.deadLetter(ctx, msg, err)
	}
	c.commit(ctx, msg)
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, event *Event) error {
	var err error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err = c.handler(ctx, event); err == nil || errors.Is(err, ErrDuplicate) {
			return err
		}
		c.logger.WarnContext(ctx, "handler failed, retrying",
			slog.String("event_type", event.Type),
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if attempt < c.maxRetries {
			if sErr := sleep(ctx, time.Duration(attempt)*c.retryDelay); sErr != nil {
				return sErr
			}
		}
	}
	return err
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err != nil {
		c.logger.ErrorContext(ctx, "dead-letter publish failed", slog.String("error", err.Error()))
		return
	}
	c.metrics.count(outcomeDLQ, msg.Topic, c.group)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.ErrorContext(ctx, "commit failed",
			slog.String("topic", msg.Topic), slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
	}
}

// Close closes the reader; safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
