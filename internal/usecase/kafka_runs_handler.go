package usecase

import (
	"context"
	"encoding/json"
	"time"

	"aiwealth/internal/domain/models"
	domrepo "aiwealth/internal/domain/repository"
	pkgkafka "aiwealth/pkg/kafka"
)

// KafkaRunsHandler consumes evaluated runs from Kafka and writes them to
// the run-log store.
type KafkaRunsHandler struct {
	topic   string
	store   domrepo.RunLogStore
	metrics domrepo.Metrics
}

func NewKafkaRunsHandler(topic string, store domrepo.RunLogStore, metrics domrepo.Metrics) *KafkaRunsHandler {
	return &KafkaRunsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaRunsHandler) Topic() string { return h.topic }

// incoming message schema: a full evaluated run (rows/meta/summary/warnings/errors)
func (h *KafkaRunsHandler) Handle(ctx context.Context, b []byte) error {
	var run models.Result
	if err := json.Unmarshal(b, &run); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	err := h.store.StoreRun(ctx, &run)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordRunEvaluated(run.Meta.Env, run.Meta.Mode)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaRunsHandler)(nil)
