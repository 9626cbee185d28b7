package vitals

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Monitor polls the engine and demotes the live snapshot to Disconnected
// after a period of device silence. One instance runs for the lifetime of
// the process; it stops only when its context is cancelled.
type Monitor struct {
	engine       *Engine
	pollInterval time.Duration
	timeout      time.Duration
	logger       *zap.Logger
}

func NewMonitor(engine *Engine, pollInterval, timeout time.Duration, logger *zap.Logger) *Monitor {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Monitor{
		engine:       engine,
		pollInterval: pollInterval,
		timeout:      timeout,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	m.logger.Info("liveness monitor started",
		zap.Duration("poll_interval", m.pollInterval),
		zap.Duration("timeout", m.timeout),
	)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("liveness monitor stopped")
			return
		case now := <-ticker.C:
			if m.engine.DemoteIfSilent(now, m.timeout) {
				m.logger.Warn("device silent past timeout, marking disconnected",
					zap.Duration("timeout", m.timeout),
				)
			}
		}
	}
}
