package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// DefaultMaxAttempts is how many failed deliveries an event gets before it is
// parked for manual inspection.
const DefaultMaxAttempts = 10

// EventPublisher relays outbox events to subscribers such as the
// notification service.
type EventPublisher struct {
	outboxRepo  usecase.OutboxRepository
	publisher   usecase.EventPublisher
	logger      zerolog.Logger
	batchSize   int
	maxAttempts int
	interval    time.Duration
	retention   time.Duration
	now         func() time.Time
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo  usecase.OutboxRepository
	Publisher   usecase.EventPublisher
	Logger      zerolog.Logger
	BatchSize   int           // Number of events to fetch per batch
	MaxAttempts int           // Failed deliveries before an event is parked
	Interval    time.Duration // Polling interval
	Retention   time.Duration // Published events older than this are purged; zero keeps them
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &EventPublisher{
		outboxRepo:  cfg.OutboxRepo,
		publisher:   cfg.Publisher,
		logger:      cfg.Logger.With().Str("component", "outbox_relay").Logger(),
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		interval:    cfg.Interval,
		retention:   cfg.Retention,
		now:         time.Now,
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := ep.processEvents(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
		}
	}
}

// processEvents fetches and publishes a batch of unpublished events.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize, ep.maxAttempts)
	if err != nil {
		return err
	}

	for _, event := range events {
		if err := ep.publishEvent(ctx, event); err != nil {
			ep.recordFailure(ctx, event, err)
			continue
		}

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			ep.logger.Error().Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
		}
	}

	if ep.retention > 0 {
		if err := ep.outboxRepo.DeletePublished(ctx, ep.now().Add(-ep.retention)); err != nil {
			return err
		}
	}

	return nil
}

// recordFailure counts the failed delivery. The next pass retries the event
// until it reaches maxAttempts.
func (ep *EventPublisher) recordFailure(ctx context.Context, event *domain.OutboxEvent, cause error) {
	attempts := event.Attempts + 1
	log := ep.logger.With().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Int("attempts", attempts).
		Logger()

	if attempts >= ep.maxAttempts {
		log.Error().Err(cause).Msg("event parked after repeated delivery failures")
	} else {
		log.Warn().Err(cause).Msg("failed to publish event")
	}

	if err := ep.outboxRepo.MarkFailed(ctx, event.ID, cause.Error()); err != nil {
		log.Error().Err(err).Msg("failed to record delivery failure")
	}
}

func (ep *EventPublisher) publishEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if err := ep.publisher.Publish(ctx, event); err != nil {
		return err
	}

	ep.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		Msg("event published")

	return nil
}

// LogPublisher writes events to the log. It stands in for the bus when no
// broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event")

	return nil
}
