package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedEvents "github.com/davicafu/hexaquery/shared/events"
	sharedBus "github.com/davicafu/hexaquery/shared/platform/bus"
)

// messageWriter es la parte de *kafka.Writer que usa el publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica los eventos en el topic configurado en el writer,
// envueltos en el sobre de integración cuando son tipados.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
	log    *zap.Logger
}

var _ sharedBus.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return newKafkaPublisher(writer, log)
}

func newKafkaPublisher(writer messageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, now: func() time.Time { return time.Now().UTC() }, log: log}
}

// NewKafkaWriter crea el writer con el balanceo por clave que usan los eventos de consulta.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	msg, err := p.message(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully", zap.ByteString("key", msg.Key))
	return nil
}

// message serializa el evento y toma la clave de partición si el evento la ofrece.
func (p *KafkaPublisher) message(event interface{}) (kafka.Message, error) {
	wrapped, err := sharedEvents.Wrap(event, p.now())
	if err != nil {
		return kafka.Message{}, err
	}
	data, err := json.Marshal(wrapped)
	if err != nil {
		return kafka.Message{}, err
	}

	msg := kafka.Message{Value: data}
	if keyer, ok := event.(sharedBus.Keyer); ok {
		msg.Key = []byte(keyer.PartitionKey())
	}
	if typed, ok := event.(sharedEvents.Typed); ok {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "type", Value: []byte(typed.EventType())})
	}
	return msg, nil
}
