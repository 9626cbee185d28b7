package domain

// VitalSigns is the clinical measurement block of a medical record.
type VitalSigns struct {
	HeartRateBPM          float64 `json:"heart_rate_bpm"`
	HeartRateStatus       string  `json:"heart_rate_status"`
	SpO2Percent           float64 `json:"spo2_percent"`
	SpO2Status            string  `json:"spo2_status"`
	RespirationRateBPM    float64 `json:"respiration_rate_bpm"`
	RespirationStatus     string  `json:"respiration_status"`
	TemperatureCelsius    float64 `json:"temperature_celsius"`
	TemperatureFahrenheit float64 `json:"temperature_fahrenheit"`
	TemperatureStatus     string  `json:"temperature_status"`
}

// SystemStatus captures the device/system state at recording time.
type SystemStatus struct {
	SignalQuality    string `json:"signal_quality"`
	CameraStatus     string `json:"camera_status"`
	MonitoringStatus string `json:"monitoring_status"`
	DeviceID         string `json:"device_id"`
}

// MedicalRecord is an immutable persisted event capturing vitals at a
// clinically notable moment. Once appended it is never mutated or deleted.
type MedicalRecord struct {
	PatientID     string       `json:"patient_id"`
	RecordID      string       `json:"record_id"`
	Timestamp     string       `json:"timestamp"`
	TriggerType   string       `json:"trigger_type"`
	TriggerReason string       `json:"trigger_reason"`
	VitalSigns    VitalSigns   `json:"vital_signs"`
	SystemStatus  SystemStatus `json:"system_status"`
}
