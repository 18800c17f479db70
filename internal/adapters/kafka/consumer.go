package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/pkg/metrics"
)

// Reader is the subset of *kafka.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one decoded sample.
type Handler func(ctx context.Context, sample *domain.Sample) error

// Consumer reads JSON location samples from a topic and commits each offset
// only after the handler accepted the sample.
type Consumer struct {
	reader      Reader
	maxAttempts int
	backoff     time.Duration
}

// Config holds the reader settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewConsumer creates a consumer-group reader with manual commits.
func NewConsumer(cfg Config) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
	})
	return NewConsumerWithReader(reader)
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r Reader) *Consumer {
	return &Consumer{reader: r, maxAttempts: 5, backoff: time.Second}
}

// Run consumes until ctx is cancelled. A message that cannot be decoded is
// skipped. A message whose handler keeps failing is skipped after
// maxAttempts tries; domain.ErrInvalidInput is never retried.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	slog.Info("kafka consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, kafka.ErrGroupClosed) {
				return err
			}
			slog.Warn("kafka fetch failed", "error", err)
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}

		var sample domain.Sample
		if err := json.Unmarshal(msg.Value, &sample); err != nil {
			metrics.IngestErrors.WithLabelValues("kafka").Inc()
			slog.Warn("skipping undecodable message",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
		} else if err := c.handle(ctx, handle, &sample); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("skipping message after failed attempts",
				"partition", msg.Partition, "offset", msg.Offset, "driver_id", sample.DriverID, "error", err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("kafka commit failed", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, handle Handler, sample *domain.Sample) error {
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = handle(ctx, sample); err == nil || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		slog.Warn("ingest attempt failed", "attempt", attempt, "driver_id", sample.DriverID, "error", err)
		if !sleep(ctx, c.backoff*time.Duration(attempt)) {
			return ctx.Err()
		}
	}
	return err
}

// Close releases the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
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
