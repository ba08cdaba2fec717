package bus_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// memBroker is an in-memory stand-in for RabbitMQ: the default exchange
// routes to queues by name, other exchanges only record what they receive.
type memBroker struct {
	mu        sync.Mutex
	queues    map[string]chan amqp.Delivery
	exchanges map[string]string
	published []exchangeMessage
	seq       uint64
	failWith  error
}

type exchangeMessage struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

func newMemBroker() *memBroker {
	return &memBroker{
		queues:    make(map[string]chan amqp.Delivery),
		exchanges: make(map[string]string),
	}
}

func (b *memBroker) queue(name string) chan amqp.Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[name]
	if !ok {
		q = make(chan amqp.Delivery, 64)
		b.queues[name] = q
	}
	return q
}

func (b *memBroker) depth(name string) int {
	return len(b.queue(name))
}

func (b *memBroker) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exchanges[name] = kind
	return nil
}

func (b *memBroker) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if name == "" {
		b.mu.Lock()
		b.seq++
		name = fmt.Sprintf("amq.gen-%d", b.seq)
		b.mu.Unlock()
	}
	b.queue(name)
	return amqp.Queue{Name: name}, nil
}

func (b *memBroker) Qos(prefetchCount, prefetchSize int, global bool) error {
	return nil
}

func (b *memBroker) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return b.queue(queue), nil
}

func (b *memBroker) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	b.mu.Lock()
	if b.failWith != nil {
		err := b.failWith
		b.mu.Unlock()
		return err
	}
	if exchange != "" {
		b.published = append(b.published, exchangeMessage{exchange: exchange, key: key, msg: msg})
		b.mu.Unlock()
		return nil
	}
	b.seq++
	tag := b.seq
	b.mu.Unlock()

	d := amqp.Delivery{
		Acknowledger:  noopAck{},
		DeliveryTag:   tag,
		ContentType:   msg.ContentType,
		CorrelationId: msg.CorrelationId,
		ReplyTo:       msg.ReplyTo,
		Body:          msg.Body,
		RoutingKey:    key,
	}
	select {
	case b.queue(key) <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *memBroker) Close() error {
	return nil
}

func (b *memBroker) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWith = err
}

var errBrokerDown = errors.New("connection closed")

type noopAck struct{}

func (noopAck) Ack(tag uint64, multiple bool) error                { return nil }
func (noopAck) Nack(tag uint64, multiple bool, requeue bool) error { return nil }
func (noopAck) Reject(tag uint64, requeue bool) error              { return nil }
