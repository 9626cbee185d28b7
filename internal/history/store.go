package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wisefido-vitals/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DurableLog persists the complete ordered record collection. Save always
// writes the full collection so the durable copy is a self-consistent
// snapshot of the entire history, even if the process crashes before the
// next write.
type DurableLog interface {
	Load(ctx context.Context) ([]domain.MedicalRecord, error)
	Save(ctx context.Context, records []domain.MedicalRecord) error
}

// Store owns the in-memory medical record collection. Records are loaded
// once at startup and every append goes to both memory and the durable log
// before the caller is acknowledged.
type Store struct {
	mu      sync.RWMutex
	records []domain.MedicalRecord
	log     DurableLog
	logger  *zap.Logger
	now     func() time.Time
}

// NewStore loads existing records from the durable log. A missing or
// corrupt store is not fatal: the history starts empty and a warning is
// logged.
func NewStore(ctx context.Context, log DurableLog, logger *zap.Logger) *Store {
	s := &Store{
		log:    log,
		logger: logger,
		now:    time.Now,
	}

	records, err := log.Load(ctx)
	if err != nil {
		logger.Warn("failed to load vitals history, starting fresh", zap.Error(err))
		records = nil
	}
	s.records = records

	if len(records) > 0 {
		logger.Info("loaded existing medical records", zap.Int("count", len(records)))
	} else {
		logger.Info("no existing medical records found, starting fresh")
	}
	return s
}

// Append stores one medical record. A missing record_id gets a generated
// unique id and a missing timestamp gets the current time. The in-memory
// collection is updated even when the durable write fails; in that case the
// record is returned together with a persistence error, and a later crash
// may lose it from disk. Availability of live data wins over durability
// here, deliberately.
func (s *Store) Append(ctx context.Context, record domain.MedicalRecord) (domain.MedicalRecord, error) {
	if record.RecordID == "" {
		record.RecordID = uuid.NewString()
	}
	if record.Timestamp == "" {
		record.Timestamp = s.now().Format(domain.TimestampLayout)
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	all := make([]domain.MedicalRecord, len(s.records))
	copy(all, s.records)
	s.mu.Unlock()

	if err := s.log.Save(ctx, all); err != nil {
		s.logger.Error("failed to persist vitals history",
			zap.String("record_id", record.RecordID),
			zap.Int("count", len(all)),
			zap.Error(err),
		)
		return record, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.logger.Info("medical record saved",
		zap.String("record_id", record.RecordID),
		zap.String("patient_id", record.PatientID),
		zap.String("trigger_type", record.TriggerType),
		zap.Float64("bpm", record.VitalSigns.HeartRateBPM),
		zap.Float64("spo2", record.VitalSigns.SpO2Percent),
		zap.Float64("respiration_rate", record.VitalSigns.RespirationRateBPM),
		zap.Float64("temperature_c", record.VitalSigns.TemperatureCelsius),
	)
	return record, nil
}

// Query filters, sorts and limits the record collection. See query.go.
func (s *Store) Query(opts QueryOptions) (QueryResult, error) {
	s.mu.RLock()
	records := make([]domain.MedicalRecord, len(s.records))
	copy(records, s.records)
	s.mu.RUnlock()

	return runQuery(records, opts)
}

// Recent returns up to n records, newest first, using the same ordering as
// Query. Used for the on-subscribe replay.
func (s *Store) Recent(n int) []domain.MedicalRecord {
	result, err := s.Query(QueryOptions{Limit: n})
	if err != nil {
		return []domain.MedicalRecord{}
	}
	return result.Records
}

// Len returns the size of the unfiltered collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
