package service

import (
	"context"
	"fmt"
	"time"

	"wisefido-vitals/internal/domain"
	"wisefido-vitals/internal/history"

	"go.uber.org/zap"
)

// RecordSink receives every newly persisted medical record, best effort.
type RecordSink interface {
	PublishRecord(record domain.MedicalRecord)
}

// RecordService coordinates a history append with the fan-out that follows
// it: persist first, then notify every sink. Sinks are notified even when
// the durable write failed, because the record is in the in-memory
// collection and visible to queries either way.
type RecordService struct {
	store  *history.Store
	sinks  []RecordSink
	logger *zap.Logger
	now    func() time.Time
}

func NewRecordService(store *history.Store, logger *zap.Logger, sinks ...RecordSink) *RecordService {
	return &RecordService{
		store:  store,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// Create appends one medical record and broadcasts it. The returned record
// carries any server-assigned record_id and timestamp. A persistence error
// is returned alongside the record; the append itself already happened in
// memory.
func (s *RecordService) Create(ctx context.Context, record domain.MedicalRecord) (domain.MedicalRecord, error) {
	stored, err := s.store.Append(ctx, record)

	for _, sink := range s.sinks {
		sink.PublishRecord(stored)
	}
	return stored, err
}

// CreateTestRecord persists and broadcasts one fixed-shape sample record,
// used to exercise the full pipeline from the dashboard.
func (s *RecordService) CreateTestRecord(ctx context.Context) (domain.MedicalRecord, error) {
	now := s.now()
	record := domain.MedicalRecord{
		PatientID:     "test_patient",
		RecordID:      fmt.Sprintf("test_record_%d", now.Unix()),
		Timestamp:     now.Format(domain.TimestampLayout),
		TriggerType:   "test",
		TriggerReason: "Manual test record via API",
		VitalSigns: domain.VitalSigns{
			HeartRateBPM:          75,
			HeartRateStatus:       "Normal",
			SpO2Percent:           98.0,
			SpO2Status:            "Normal",
			RespirationRateBPM:    16.0,
			RespirationStatus:     "Normal",
			TemperatureCelsius:    36.5,
			TemperatureFahrenheit: 97.7,
			TemperatureStatus:     "Normal",
		},
		SystemStatus: domain.SystemStatus{
			SignalQuality:    "Good Signal",
			CameraStatus:     "Active",
			MonitoringStatus: domain.MonitoringActive,
			DeviceID:         "test_device",
		},
	}
	return s.Create(ctx, record)
}
