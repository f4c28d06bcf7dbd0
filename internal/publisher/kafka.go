package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/smartcity/trafficsim/internal/domain"
)

// KafkaOutput publishes snapshots to a Kafka topic keyed by snapshot ID
type KafkaOutput struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaOutput wraps an existing producer
func NewKafkaOutput(producer sarama.SyncProducer, topic string) *KafkaOutput {
	return &KafkaOutput{producer: producer, topic: topic}
}

// NewSaramaProducer creates a synchronous producer for the given brokers
func NewSaramaProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 100 * time.Millisecond
	cfg.Producer.Return.Successes = true // Must be true for SyncProducer
	cfg.Net.DialTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("publisher: failed to create sarama producer: %w", err)
	}
	return producer, nil
}

// Publish sends the snapshot as JSON
func (k *KafkaOutput) Publish(ctx context.Context, snapshot domain.Snapshot) error {
	if k.producer == nil {
		return fmt.Errorf("publisher: kafka producer is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("publisher: failed to marshal snapshot: %w", err)
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     k.topic,
		Key:       sarama.StringEncoder(snapshot.ID),
		Value:     sarama.ByteEncoder(msg),
		Timestamp: snapshot.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("publisher: failed to send snapshot %s: %w", snapshot.ID, err)
	}
	return nil
}

// Close shuts the producer down
func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
