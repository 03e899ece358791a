package logger

import (
	"sync"
	"time"
)

// ProgressTracker logs throughput for long batch runs. It is safe for
// concurrent use by the workers that report completed records.
type ProgressTracker struct {
	logger    Logger
	operation string
	total     int
	interval  int

	mu        sync.Mutex
	completed int
	started   time.Time
}

// NewProgressTracker creates a tracker that logs every interval records.
// An interval of 0 disables periodic logging; Finish still reports totals.
func NewProgressTracker(log Logger, operation string, total, interval int) *ProgressTracker {
	if log == nil {
		log = GetGlobalLogger()
	}
	return &ProgressTracker{
		logger:    log.WithComponent("progress"),
		operation: operation,
		total:     total,
		interval:  interval,
		started:   time.Now(),
	}
}

// Increment records one completed record and logs when an interval boundary
// is crossed
func (p *ProgressTracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed++
	if p.interval <= 0 || p.completed%p.interval != 0 {
		return
	}

	elapsed := time.Since(p.started)
	p.logger.WithFields(Fields{
		"operation":  p.operation,
		"completed":  p.completed,
		"total":      p.total,
		"percent":    p.percentLocked(),
		"per_second": p.rateLocked(elapsed),
	}).Infof("%s progress: %d/%d", p.operation, p.completed, p.total)
}

// Finish logs the final totals and returns the elapsed duration
func (p *ProgressTracker) Finish() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.started)
	p.logger.WithFields(Fields{
		"operation":  p.operation,
		"completed":  p.completed,
		"total":      p.total,
		"elapsed":    elapsed.String(),
		"per_second": p.rateLocked(elapsed),
	}).Infof("%s finished: %d records in %s", p.operation, p.completed, elapsed.Round(time.Millisecond))

	return elapsed
}

// Completed returns the number of records recorded so far
func (p *ProgressTracker) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

func (p *ProgressTracker) percentLocked() float64 {
	if p.total <= 0 {
		return 0
	}
	return float64(p.completed) / float64(p.total) * 100
}

func (p *ProgressTracker) rateLocked(elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(p.completed) / secs
}
