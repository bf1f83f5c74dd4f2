package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"aiwealth/pkg/logger"
)

// ConsumerHook defines lifecycle hooks around message handling. Hooks can
// mutate context, message, and payload. A non-nil error from BeforeHandle
// skips the handler and goes straight to error processing (OnError, DLQ,
// offset commit).
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error)
	AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
	OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
}

// NoopHook does nothing.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return ctx, km, data, nil
}

func (NoopHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
}

func (NoopHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {}

// Context keys for hook metadata.
type ctxKey string

const (
	// CtxStartTime holds the time.Time when handling started.
	CtxStartTime ctxKey = "kafka_hook_start_time"
	// CtxTraceID holds the correlation id extracted from message headers.
	CtxTraceID ctxKey = "kafka_hook_trace_id"
)

// ExtractTraceID reads the trace_id header from a message, if present.
func ExtractTraceID(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "trace_id" && len(h.Value) > 0 {
			return string(h.Value)
		}
	}
	return ""
}

// LoggingHook stamps handling start time and trace id on the context and
// logs slow or failed messages.
type LoggingHook struct {
	L             *logger.Logger
	SlowThreshold time.Duration
}

func (h LoggingHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	ctx = context.WithValue(ctx, CtxStartTime, time.Now())
	if tid := ExtractTraceID(km); tid != "" {
		ctx = context.WithValue(ctx, CtxTraceID, tid)
	}
	return ctx, km, data, nil
}

func (h LoggingHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	if h.L == nil || err != nil {
		return
	}
	start, ok := ctx.Value(CtxStartTime).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); h.SlowThreshold > 0 && elapsed > h.SlowThreshold {
		h.L.Warn("kafka consumer: slow message",
			logger.String("topic", topic),
			logger.Int("partition", km.Partition),
			logger.Int64("offset", km.Offset),
			logger.Duration("elapsed", elapsed))
	}
}

func (h LoggingHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	if h.L == nil {
		return
	}
	fields := []logger.Field{
		logger.String("topic", topic),
		logger.Int("partition", km.Partition),
		logger.Int64("offset", km.Offset),
		logger.Error(err),
	}
	if tid, ok := ctx.Value(CtxTraceID).(string); ok && tid != "" {
		fields = append(fields, logger.String("trace_id", tid))
	}
	h.L.Error("kafka consumer: message error", fields...)
}
