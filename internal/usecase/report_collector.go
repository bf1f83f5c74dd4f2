package usecase

import (
	"context"

	"aiwealth/internal/domain/models"
	drepo "aiwealth/internal/domain/repository"
	mid "aiwealth/internal/middleware"
)

// ReportCollector collects reports from the signal-generation stream and
// processes them.
type ReportCollector struct {
	stream  drepo.ReportStream
	proc    *ReportProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewReportCollector creates a new ReportCollector instance.
func NewReportCollector(stream drepo.ReportStream, proc *ReportProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *ReportCollector {
	return &ReportCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the report stream is connected.
func (c *ReportCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *ReportCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	repCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, repCh, errCh)
	return nil
}

func (c *ReportCollector) consume(ctx context.Context, repCh <-chan *models.Report, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case r := <-repCh:
			if r == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, r)
			} else {
				_ = c.proc.Process(ctx, r)
			}
		}
	}
}

func (c *ReportCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying ReportProcessor for lifecycle management.
func (c *ReportCollector) Processor() *ReportProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *ReportCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
