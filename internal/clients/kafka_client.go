package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const KAFKA_TOPIC_REPORTS = "insight-reports"

type KafkaConfig struct {
	Broker string
	Topic  string
}

// KafkaPublisher publishes every finished report, keyed by run ID, so
// downstream consumers can follow analysis runs.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if cfg.Topic == "" {
		cfg.Topic = KAFKA_TOPIC_REPORTS
	}
	slog.Info("[KafkaClient] Initializing Kafka producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka producer initialized successfully", slog.String("topic", cfg.Topic))
	return &KafkaPublisher{producer: p, topic: cfg.Topic}, nil
}

// SaveReport blocks until the broker acknowledges the message or ctx ends.
func (kp *KafkaPublisher) SaveReport(ctx context.Context, report *models.Report) error {
	msg, err := reportMessage(kp.topic, report)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	if err := kp.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce report %s: %w", report.RunID, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] unexpected delivery event %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaClient] delivery of report %s failed: %w", report.RunID, m.TopicPartition.Error)
		}
	}

	slog.Info("[KafkaClient] Published report",
		slog.String("topic", kp.topic),
		slog.String("run_id", report.RunID),
		slog.String("subreddit", report.Subreddit))
	return nil
}

func (kp *KafkaPublisher) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := kp.producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	kp.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

func reportMessage(topic string, report *models.Report) (*kafka.Message, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to encode report %s: %w", report.RunID, err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(report.RunID),
		Value:          payload,
		Headers: []kafka.Header{
			{Key: "subreddit", Value: []byte(report.Subreddit)},
		},
	}, nil
}
