package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// EventType names a ranked domain event.
type EventType string

const (
	EventTournamentResolved EventType = "tournament.resolved"
	EventSeasonRolledOver   EventType = "season.rolled_over"
)

// Event is the envelope written to Kafka. Key is the partitioning key
// (queue id or season month).
type Event struct {
	Type      EventType `json:"type"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Producer publishes ranked events. A disabled producer drops everything,
// which lets the service run without a broker.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	enabled  bool
}

// NewProducer connects to the given brokers. When none are configured or the
// cluster cannot be reached it returns a disabled producer instead of failing.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 {
		log.Println("⚠️  [EVENTS] KAFKA_BROKERS not set, ranked events disabled")
		return &Producer{topic: topic}
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		log.Printf("⚠️  [EVENTS] Kafka producer not available: %v (ranked events disabled)", err)
		return &Producer{topic: topic}
	}

	log.Printf("✅ [EVENTS] Kafka producer connected (topic %s)", topic)
	return NewProducerWith(producer, topic)
}

// NewProducerWith wraps an existing sarama producer.
func NewProducerWith(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: producer, topic: topic, enabled: true}
}

// Publish sends one event synchronously.
func (p *Producer) Publish(ctx context.Context, event Event) error {
	if !p.enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send %s event: %w", event.Type, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func (p *Producer) IsEnabled() bool {
	return p.enabled
}
