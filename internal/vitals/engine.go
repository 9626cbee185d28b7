package vitals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"wisefido-vitals/internal/domain"

	"go.uber.org/zap"
)

// SnapshotSink receives every new live snapshot, best effort. Implementations
// must not block the ingest path.
type SnapshotSink interface {
	PublishSnapshot(snapshot domain.VitalSnapshot)
}

// Engine validates incoming readings, maintains the process-wide current
// snapshot and the chart buffer, and tracks when data was last received.
// It is the only component allowed to transition the connection state to
// Connected; the liveness monitor is the only one allowed to demote it.
type Engine struct {
	mu               sync.RWMutex
	current          domain.VitalSnapshot
	lastDataReceived time.Time

	buffer *TimeSeriesBuffer
	sinks  []SnapshotSink
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(buffer *TimeSeriesBuffer, logger *zap.Logger, sinks ...SnapshotSink) *Engine {
	now := time.Now
	return &Engine{
		current: domain.InitialSnapshot(now()),
		buffer:  buffer,
		sinks:   sinks,
		logger:  logger,
		now:     now,
	}
}

// AddSink attaches one more snapshot sink. Must be called before ingestion
// starts; the sink list is not guarded.
func (e *Engine) AddSink(sink SnapshotSink) {
	e.sinks = append(e.sinks, sink)
}

// Ingest processes one reading payload from the device: overlays it onto
// defaults, replaces the current snapshot, appends to the chart buffer,
// resets the liveness clock and publishes the new snapshot to all sinks.
// A malformed payload returns a validation error and mutates nothing.
func (e *Engine) Ingest(payload []byte) (domain.VitalSnapshot, error) {
	reading := domain.DefaultReading()
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.VitalSnapshot{}, fmt.Errorf("%w: empty payload", domain.ErrValidation)
	}
	if err := json.Unmarshal(trimmed, &reading); err != nil {
		return domain.VitalSnapshot{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	e.mu.Lock()
	now := e.now()
	snapshot := reading.Snapshot(now)
	// last_update never goes backwards, even across a wall clock jump.
	if snapshot.LastUpdate < e.current.LastUpdate {
		snapshot.LastUpdate = e.current.LastUpdate
	}
	e.current = snapshot
	e.lastDataReceived = now
	e.mu.Unlock()

	e.buffer.Append(reading.BPM, reading.SpO2, reading.RespirationRate, reading.TemperatureC, snapshot.LastUpdate)

	for _, sink := range e.sinks {
		sink.PublishSnapshot(snapshot)
	}

	e.logger.Debug("reading ingested",
		zap.Float64("bpm", reading.BPM),
		zap.Float64("spo2", reading.SpO2),
		zap.String("monitoring_status", reading.MonitoringStatus),
	)

	return snapshot, nil
}

// Snapshot returns the current live state.
func (e *Engine) Snapshot() domain.VitalSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Chart returns a copy of the time-series buffer.
func (e *Engine) Chart() ChartData {
	return e.buffer.Snapshot()
}

// DemoteIfSilent marks the snapshot disconnected if no data has arrived
// within timeout. Called only by the liveness monitor. Returns whether a
// transition happened on this call.
func (e *Engine) DemoteIfSilent(now time.Time, timeout time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if now.Sub(e.lastDataReceived) <= timeout {
		return false
	}
	if e.current.ConnectionStatus == domain.ConnectionDisconnected &&
		e.current.MonitoringStatus == domain.MonitoringDisconnected {
		return false
	}
	e.current.ConnectionStatus = domain.ConnectionDisconnected
	e.current.MonitoringStatus = domain.MonitoringDisconnected
	return true
}
