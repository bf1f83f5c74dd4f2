package repository

import (
	"context"

	"aiwealth/internal/domain/models"
	"aiwealth/internal/domain/repository"
	pkgkafka "aiwealth/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Evaluated runs go out as
// full JSON documents keyed by run_date/env so one run stays in one partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, run *models.Result) error {
	key := []byte(run.Meta.RunDate + "/" + run.Meta.Env)
	return p.producer.Publish(ctx, p.topic, key, run)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
