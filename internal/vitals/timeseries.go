package vitals

import "sync"

// DefaultBufferCapacity is how many readings the chart buffer keeps.
const DefaultBufferCapacity = 100

// ChartData is a point-in-time copy of the buffer, safe for the caller to
// hold. Index i refers to the same reading event across all five series.
type ChartData struct {
	BPM             []float64 `json:"bpm"`
	SpO2            []float64 `json:"spo2"`
	RespirationRate []float64 `json:"respiration_rate"`
	Temperature     []float64 `json:"temperature"`
	Timestamps      []string  `json:"timestamps"`
}

// TimeSeriesBuffer holds the last N readings as five parallel series for
// chart rendering. Append-only with FIFO eviction; never cleared.
type TimeSeriesBuffer struct {
	mu       sync.RWMutex
	capacity int

	bpm         []float64
	spo2        []float64
	respiration []float64
	temperature []float64
	timestamps  []string
}

func NewTimeSeriesBuffer(capacity int) *TimeSeriesBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &TimeSeriesBuffer{
		capacity:    capacity,
		bpm:         make([]float64, 0, capacity),
		spo2:        make([]float64, 0, capacity),
		respiration: make([]float64, 0, capacity),
		temperature: make([]float64, 0, capacity),
		timestamps:  make([]string, 0, capacity),
	}
}

// Append records one reading, evicting the oldest entry when full. All five
// series always stay the same length.
func (b *TimeSeriesBuffer) Append(bpm, spo2, respiration, temperature float64, timestamp string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.timestamps) >= b.capacity {
		b.bpm = b.bpm[1:]
		b.spo2 = b.spo2[1:]
		b.respiration = b.respiration[1:]
		b.temperature = b.temperature[1:]
		b.timestamps = b.timestamps[1:]
	}
	b.bpm = append(b.bpm, bpm)
	b.spo2 = append(b.spo2, spo2)
	b.respiration = append(b.respiration, respiration)
	b.temperature = append(b.temperature, temperature)
	b.timestamps = append(b.timestamps, timestamp)
}

// Len returns the number of readings currently buffered.
func (b *TimeSeriesBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.timestamps)
}

// Snapshot returns a copy of all five series.
func (b *TimeSeriesBuffer) Snapshot() ChartData {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := ChartData{
		BPM:             make([]float64, len(b.bpm)),
		SpO2:            make([]float64, len(b.spo2)),
		RespirationRate: make([]float64, len(b.respiration)),
		Temperature:     make([]float64, len(b.temperature)),
		Timestamps:      make([]string, len(b.timestamps)),
	}
	copy(out.BPM, b.bpm)
	copy(out.SpO2, b.spo2)
	copy(out.RespirationRate, b.respiration)
	copy(out.Temperature, b.temperature)
	copy(out.Timestamps, b.timestamps)
	return out
}
