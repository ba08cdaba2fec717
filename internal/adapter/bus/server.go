package bus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/domain"
)

// HandlerFunc answers one command.
type HandlerFunc func(ctx context.Context, body json.RawMessage) (any, error)

// Server consumes command queues and publishes replies to the caller's
// reply queue.
type Server struct {
	ch       Channel
	handlers map[string]HandlerFunc
	timeout  time.Duration
	prefetch int
	logger   zerolog.Logger
}

// NewServer creates a Server. Each handler runs under timeout.
func NewServer(ch Channel, timeout time.Duration, logger zerolog.Logger) *Server {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Server{
		ch:       ch,
		handlers: make(map[string]HandlerFunc),
		timeout:  timeout,
		prefetch: 16,
		logger:   logger.With().Str("component", "bus_server").Logger(),
	}
}

// Handle registers h for topic. It must be called before Serve.
func (s *Server) Handle(topic string, h HandlerFunc) {
	s.handlers[topic] = h
}

// Serve consumes every registered topic until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.ch.Qos(s.prefetch, 0, false); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for topic, h := range s.handlers {
		if _, err := s.ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			return err
		}
		deliveries, err := s.ch.Consume(topic, "", false, false, false, false, nil)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func(topic string, h HandlerFunc) {
			defer wg.Done()
			s.consume(ctx, topic, h, deliveries)
		}(topic, h)
	}

	s.logger.Info().Int("topics", len(s.handlers)).Msg("bus server started")
	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (s *Server) consume(ctx context.Context, topic string, h HandlerFunc, deliveries <-chan amqp.Delivery) {
	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				s.serve(ctx, topic, h, d)
			}()
		}
	}
}

func (s *Server) serve(ctx context.Context, topic string, h HandlerFunc, d amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	var reply Reply
	result, err := h(ctx, d.Body)
	if err == nil {
		reply.Payload, err = json.Marshal(result)
	}
	if err != nil {
		reply.Error = NewReplyError(err)
		if domain.KindOf(err) == domain.KindInternal {
			s.logger.Error().Err(err).Str("topic", topic).Msg("command failed")
		}
	}

	if d.ReplyTo != "" {
		body, _ := json.Marshal(reply)
		msg := amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		}
		if err := s.ch.PublishWithContext(ctx, "", d.ReplyTo, false, false, msg); err != nil {
			s.logger.Error().Err(err).Str("topic", topic).Msg("failed to publish reply")
		}
	}

	if err := d.Ack(false); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("failed to ack command")
	}
}

// decode unmarshals a command body.
func decode[T any](body json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, domain.Wrapf(domain.ErrInvalidRequest, "%v", err)
	}
	return v, nil
}
