package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aiwealth/internal/domain/models"
	domrepo "aiwealth/internal/domain/repository"
)

// Proc is the downstream the pipeline feeds, normally the report processor.
type Proc interface {
	Process(ctx context.Context, r *models.Report) error
}

// RealtimePipeline sits between the report stream and the brain. Incoming
// reports are validated, throttled per environment and handed downstream;
// failed hand-offs are parked in a bounded buffer and retried in the
// background with backoff.
type RealtimePipeline struct {
	proc    Proc
	metrics domrepo.Metrics

	maxRPS  int
	bufSize int
	bufCh   chan *models.Report
	stopCh  chan struct{}

	mu       sync.Mutex
	started  bool
	lastSeen map[string]time.Time

	transform func(*models.Report) *models.Report
}

type PipelineOption func(*RealtimePipeline)

// WithMaxRPS caps accepted reports per second for each environment.
func WithMaxRPS(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sizes the retry buffer used while downstream is failing.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform installs a hook that rewrites reports before validation of
// the transformed shape and hand-off.
func WithTransform(fn func(*models.Report) *models.Report) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

// NewRealtimePipeline creates a pipeline in front of proc.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   5,
		bufSize:  256,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Report, p.bufSize)
	return p
}

// Start launches the background flusher for parked reports.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	alreadyStarted := p.started
	p.started = true
	p.mu.Unlock()
	if alreadyStarted {
		return
	}
	go p.flushLoop(ctx)
}

// Stop halts the background flusher.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	close(p.stopCh)
}

func (p *RealtimePipeline) flushLoop(ctx context.Context) {
	const minBackoff = 50 * time.Millisecond
	backoff := minBackoff

	for {
		select {
		case <-p.stopCh:
			return
		case r := <-p.bufCh:
			if r == nil {
				continue
			}
			if err := p.proc.Process(ctx, r); err != nil {
				p.metrics.RecordError("pipeline_flush")
				if backoff < 2*time.Second {
					backoff *= 2
				}
				time.Sleep(backoff)
				p.park(r)
				continue
			}
			backoff = minBackoff
		}
	}
}

// Process validates, throttles and forwards one report. A downstream failure
// parks the report for the flusher and is still reported to the caller.
func (p *RealtimePipeline) Process(ctx context.Context, r *models.Report) error {
	start := time.Now()

	if err := validateReport(r); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		r = p.transform(r)
		if err := validateReport(r); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}

	if !p.allow(r.Env, start) {
		// throttled reports are dropped, not errors
		p.metrics.RecordError("pipeline_throttle")
		p.metrics.RecordError("pipeline_throttle_" + r.Env)
		return nil
	}

	if err := p.proc.Process(ctx, r); err != nil {
		p.metrics.RecordError("pipeline_process")
		p.park(r)
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func (p *RealtimePipeline) park(r *models.Report) {
	select {
	case p.bufCh <- r:
		p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.bufCh)))
	default:
		p.metrics.RecordError("pipeline_buffer_drop")
	}
}

func (p *RealtimePipeline) allow(env string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	minGap := time.Second / time.Duration(p.maxRPS)

	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[env]
	if !last.IsZero() && now.Sub(last) < minGap {
		return false
	}
	p.lastSeen[env] = now
	return true
}

func validateReport(r *models.Report) error {
	if r == nil {
		return fmt.Errorf("report nil")
	}
	if r.Env == "" {
		return fmt.Errorf("env empty")
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("payload empty")
	}
	return nil
}
