package events

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaquery/shared/events"
	sharedBus "github.com/davicafu/hexaquery/shared/platform/bus"
)

// Message es lo que recibe un suscriptor del bus en memoria: clave y JSON, como en Kafka.
type Message struct {
	Key     string
	Payload []byte
}

// InMemoryEventBus implementa un bus de eventos para UN solo topic.
// Si el buffer de un suscriptor está lleno el mensaje se descarta y se cuenta.
type InMemoryEventBus struct {
	subscribers []chan Message
	mu          sync.RWMutex
	closeOnce   sync.Once
	closed      bool
	topic       string
	dropped     atomic.Int64
	log         *zap.Logger
}

var _ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(topic string, log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{topic: topic, log: log}
}

func (b *InMemoryEventBus) Topic() string { return b.topic }

func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	wrapped, err := sharedEvents.Wrap(event, time.Now().UTC())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(wrapped)
	if err != nil {
		return err
	}
	msg := Message{Payload: payload}
	if keyer, ok := event.(sharedBus.Keyer); ok {
		msg.Key = keyer.PartitionKey()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, sub := range b.subscribers {
		select {
		case sub <- msg:
		default:
			b.dropped.Add(1)
			b.log.Warn("In-memory subscriber is full, event dropped", zap.String("topic", b.topic))
		}
	}
	return nil
}

// Subscribe registra un nuevo oyente con el buffer indicado.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Message, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Dropped devuelve cuántos mensajes se han descartado por buffers llenos.
func (b *InMemoryEventBus) Dropped() int64 {
	return b.dropped.Load()
}

// Close cierra los canales de todos los suscriptores.
func (b *InMemoryEventBus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed = true
		for _, sub := range b.subscribers {
			close(sub)
		}
		b.subscribers = nil
	})
}
