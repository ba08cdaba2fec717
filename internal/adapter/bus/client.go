package bus

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/infrastructure/metrics"
)

// ClientConfig bounds every call and configures the per-topic breakers.
type ClientConfig struct {
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// Client sends commands and waits for the matching reply on a private
// queue. Replies are matched by correlation id.
type Client struct {
	ch      Channel
	replyTo string
	cfg     ClientConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu       sync.Mutex
	pending  map[string]chan amqp.Delivery
	breakers map[string]*gobreaker.CircuitBreaker
	done     chan struct{}
}

// NewClient declares the reply queue and starts dispatching replies.
func NewClient(ch Channel, cfg ClientConfig, m *metrics.Metrics, logger zerolog.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 30 * time.Second
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, err
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ch:       ch,
		replyTo:  q.Name,
		cfg:      cfg,
		metrics:  m,
		logger:   logger.With().Str("component", "bus_client").Logger(),
		pending:  make(map[string]chan amqp.Delivery),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		done:     make(chan struct{}),
	}
	go c.dispatch(deliveries)

	return c, nil
}

func (c *Client) dispatch(deliveries <-chan amqp.Delivery) {
	defer close(c.done)

	for d := range deliveries {
		c.mu.Lock()
		waiter, ok := c.pending[d.CorrelationId]
		delete(c.pending, d.CorrelationId)
		c.mu.Unlock()

		if !ok {
			c.logger.Debug().Str("correlation_id", d.CorrelationId).Msg("dropping late reply")
			continue
		}
		waiter <- d
	}
}

// Done is closed when the reply consumer stops.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Call sends req on topic and decodes the reply payload into resp.
func (c *Client) Call(ctx context.Context, topic string, req, resp any) error {
	start := time.Now()

	_, err := c.breaker(topic).Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, topic, req, resp)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = domain.Wrapf(domain.ErrCollaboratorUnavailable, "%s: circuit open", topic)
	}

	if c.metrics != nil {
		c.metrics.CollaboratorCalls.WithLabelValues(topic, callResult(err)).Inc()
		c.metrics.CollaboratorDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	}

	return err
}

func (c *Client) roundTrip(ctx context.Context, topic string, req, resp any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	corrID := uuid.NewString()
	waiter := make(chan amqp.Delivery, 1)

	c.mu.Lock()
	c.pending[corrID] = waiter
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, corrID)
		c.mu.Unlock()
	}()

	msg := amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: corrID,
		ReplyTo:       c.replyTo,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	}
	if deadline, ok := ctx.Deadline(); ok {
		if ms := time.Until(deadline).Milliseconds(); ms > 0 {
			msg.Expiration = strconv.FormatInt(ms, 10)
		}
	}

	if err := c.ch.PublishWithContext(ctx, "", topic, false, false, msg); err != nil {
		return domain.Wrapf(domain.ErrCollaboratorUnavailable, "publish %s: %v", topic, err)
	}

	select {
	case d := <-waiter:
		var reply Reply
		if err := json.Unmarshal(d.Body, &reply); err != nil {
			return domain.Wrapf(domain.ErrCollaboratorUnavailable, "decode %s reply: %v", topic, err)
		}
		if reply.Error != nil {
			return reply.Error.Err()
		}
		if resp != nil && len(reply.Payload) > 0 {
			if err := json.Unmarshal(reply.Payload, resp); err != nil {
				return domain.Wrapf(domain.ErrCollaboratorUnavailable, "decode %s payload: %v", topic, err)
			}
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Wrapf(domain.ErrCollaboratorTimeout, "%s", topic)
		}
		return ctx.Err()
	}
}

func (c *Client) breaker(topic string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[topic]; ok {
		return cb
	}

	maxFailures := c.cfg.BreakerMaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    topic,
		Timeout: c.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// answers such as not found prove the collaborator is up
		IsSuccessful: func(err error) bool {
			return err == nil || !domain.IsCollaboratorFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("topic", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	c.breakers[topic] = cb
	return cb
}

func callResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsCollaboratorFailure(err):
		return "unavailable"
	default:
		return "error"
	}
}
