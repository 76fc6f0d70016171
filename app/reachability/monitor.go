package reachability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joefazee/countrylookup/internal/logger"
)

// Status is read by anything that needs to know whether the network is usable.
type Status interface {
	IsAvailable() bool
}

// Monitor publishes the latest probe result. Readers never block and always see
// the most recent value; the network is assumed available until a probe says otherwise.
type Monitor struct {
	observer Observer
	interval time.Duration
	logger   logger.Logger

	available atomic.Bool

	mu      sync.Mutex
	quit    chan struct{}
	stopped chan struct{}
}

var _ Status = (*Monitor)(nil)

func NewMonitor(observer Observer, interval time.Duration, log logger.Logger) *Monitor {
	if log == nil {
		log = logger.NewNullLogger()
	}
	m := &Monitor{
		observer: observer,
		interval: interval,
		logger:   log,
	}
	m.available.Store(true)
	return m
}

// IsAvailable returns the last published value
func (m *Monitor) IsAvailable() bool {
	return m.available.Load()
}

// Update publishes a value and logs transitions.
func (m *Monitor) Update(available bool) {
	if m.available.Swap(available) != available {
		m.logger.Info("network reachability changed", map[string]interface{}{"available": available})
	}
}

// Start probes once immediately, then every interval until Stop or ctx is done.
// Calling Start on a running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quit != nil || m.observer == nil {
		return
	}

	quit := make(chan struct{})
	stopped := make(chan struct{})
	m.quit, m.stopped = quit, stopped

	go func() {
		defer close(stopped)
		m.probe(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.probe(ctx)
			case <-quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()
	m.Update(m.observer.Probe(probeCtx))
}

// Stop ends probing and waits for the probe goroutine to exit. The last
// published value is kept.
func (m *Monitor) Stop() {
	m.mu.Lock()
	quit, stopped := m.quit, m.stopped
	m.quit, m.stopped = nil, nil
	m.mu.Unlock()

	if quit == nil {
		return
	}
	close(quit)
	<-stopped
}
