package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	topic   string
	handled chan struct{}
}

func (h *recordingHandler) Topic() string { return h.topic }
func (h *recordingHandler) Handle(ctx context.Context, data []byte) error {
	select {
	case h.handled <- struct{}{}:
	default:
	}
	return nil
}

func TestStopJoinsReadersBeforeClosingInbox(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"127.0.0.1:19092"}),
		WithConsumerBufferSize(1),
	)
	require.NoError(t, err)
	c.RegisterHandler(&recordingHandler{topic: "runs", handled: make(chan struct{}, 1)})

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.workWg.Add(1)
		go c.handleLoop()
	}
	// Stand-in for a read loop: enqueue as fast as possible until stopped.
	// Stop must join this goroutine before it closes the inbox.
	c.readWg.Add(1)
	go func() {
		defer c.readWg.Done()
		for c.enqueue(&inbound{topic: "runs", data: []byte("{}")}) {
		}
	}()

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))
}

func TestEnqueueAbortsOnStopWhenInboxFull(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"127.0.0.1:19092"}),
		WithConsumerBufferSize(1),
	)
	require.NoError(t, err)

	require.True(t, c.enqueue(&inbound{topic: "runs", data: []byte("{}")}))
	close(c.stopChan)
	require.False(t, c.enqueue(&inbound{topic: "runs", data: []byte("{}")}))
}

func TestBackoffWithJitterStaysBounded(t *testing.T) {
	for attempt := 1; attempt <= 6; attempt++ {
		d := backoffWithJitter(50*time.Millisecond, 2*time.Second, attempt)
		require.Greater(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 2*time.Second)
	}
}
