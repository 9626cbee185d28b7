package domain

import "time"

// TimestampLayout is the wire format for all timestamps in this service.
// Fixed-width fractional seconds keep lexicographic order equal to
// chronological order, which the history query engine relies on.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Monitoring status values pushed by the sensing device.
const (
	MonitoringStopped      = "STOPPED"
	MonitoringActive       = "ACTIVE"
	MonitoringDisconnected = "DISCONNECTED"
)

// Connection status values of the live snapshot.
const (
	ConnectionConnected    = "Connected"
	ConnectionDisconnected = "Disconnected"
)

// VitalSnapshot is the single current-state view of the monitored patient.
// There is exactly one instance per process; it is replaced by the ingestion
// engine on every reading and demoted in place by the liveness monitor.
type VitalSnapshot struct {
	BPM              float64 `json:"bpm"`
	BPMStatus        string  `json:"bpm_status"`
	SpO2             float64 `json:"spo2"`
	SpO2Status       string  `json:"spo2_status"`
	RespirationRate  float64 `json:"respiration_rate"`
	RRStatus         string  `json:"rr_status"`
	TemperatureC     float64 `json:"temperature_c"`
	TemperatureF     float64 `json:"temperature_f"`
	TempStatus       string  `json:"temp_status"`
	SignalQuality    string  `json:"signal_quality"`
	CameraStatus     string  `json:"camera_status"`
	MonitoringStatus string  `json:"monitoring_status"`
	LastUpdate       string  `json:"last_update"`
	ConnectionStatus string  `json:"connection_status"`
}

// InitialSnapshot is the state before any reading has arrived.
func InitialSnapshot(now time.Time) VitalSnapshot {
	return VitalSnapshot{
		BPMStatus:        "Not Connected",
		SpO2Status:       "Not Connected",
		RRStatus:         "Not Connected",
		TempStatus:       "Not Connected",
		SignalQuality:    "No Signal",
		CameraStatus:     "Not Active",
		MonitoringStatus: MonitoringStopped,
		LastUpdate:       now.Format(TimestampLayout),
		ConnectionStatus: ConnectionDisconnected,
	}
}

// Reading is one partial payload from the sensing device. Absent numeric
// fields default to 0 and absent status fields to "Unknown"; DefaultReading
// pre-fills those defaults so a JSON decode overlays only what was supplied.
type Reading struct {
	BPM              float64 `json:"bpm"`
	BPMStatus        string  `json:"bpm_status"`
	SpO2             float64 `json:"spo2"`
	SpO2Status       string  `json:"spo2_status"`
	RespirationRate  float64 `json:"respiration_rate"`
	RRStatus         string  `json:"rr_status"`
	TemperatureC     float64 `json:"temperature_c"`
	TemperatureF     float64 `json:"temperature_f"`
	TempStatus       string  `json:"temp_status"`
	SignalQuality    string  `json:"signal_quality"`
	CameraStatus     string  `json:"camera_status"`
	MonitoringStatus string  `json:"monitoring_status"`
}

// DefaultReading returns a Reading with every status field set to "Unknown".
func DefaultReading() Reading {
	return Reading{
		BPMStatus:        "Unknown",
		SpO2Status:       "Unknown",
		RRStatus:         "Unknown",
		TempStatus:       "Unknown",
		SignalQuality:    "Unknown",
		CameraStatus:     "Unknown",
		MonitoringStatus: "Unknown",
	}
}

// Snapshot converts a reading into the live snapshot it produces.
func (r Reading) Snapshot(now time.Time) VitalSnapshot {
	return VitalSnapshot{
		BPM:              r.BPM,
		BPMStatus:        r.BPMStatus,
		SpO2:             r.SpO2,
		SpO2Status:       r.SpO2Status,
		RespirationRate:  r.RespirationRate,
		RRStatus:         r.RRStatus,
		TemperatureC:     r.TemperatureC,
		TemperatureF:     r.TemperatureF,
		TempStatus:       r.TempStatus,
		SignalQuality:    r.SignalQuality,
		CameraStatus:     r.CameraStatus,
		MonitoringStatus: r.MonitoringStatus,
		LastUpdate:       now.Format(TimestampLayout),
		ConnectionStatus: ConnectionConnected,
	}
}
