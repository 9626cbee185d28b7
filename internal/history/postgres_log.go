package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"wisefido-vitals/internal/domain"

	"go.uber.org/zap"
)

// PostgresLog keeps the history in a single table. Save upserts the full
// collection inside one transaction, which preserves the DurableLog
// contract: after every successful Save the table holds the complete
// history. Records are keyed by record_id and carry their collection
// position so Load restores insertion order.
type PostgresLog struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresLog(db *sql.DB, logger *zap.Logger) *PostgresLog {
	return &PostgresLog{db: db, logger: logger}
}

// EnsureSchema creates the history table if it does not exist.
func (p *PostgresLog) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS vitals_history (
			record_id      TEXT PRIMARY KEY,
			patient_id     TEXT NOT NULL DEFAULT '',
			recorded_at    TEXT NOT NULL DEFAULT '',
			trigger_type   TEXT NOT NULL DEFAULT '',
			trigger_reason TEXT NOT NULL DEFAULT '',
			vital_signs    JSONB NOT NULL DEFAULT '{}',
			system_status  JSONB NOT NULL DEFAULT '{}',
			position       INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create vitals_history table: %w", err)
	}
	return nil
}

func (p *PostgresLog) Load(ctx context.Context) ([]domain.MedicalRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT record_id, patient_id, recorded_at, trigger_type, trigger_reason,
		       vital_signs, system_status
		FROM vitals_history
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vitals_history: %w", err)
	}
	defer rows.Close()

	var records []domain.MedicalRecord
	for rows.Next() {
		var rec domain.MedicalRecord
		var vitalSigns, systemStatus []byte
		if err := rows.Scan(
			&rec.RecordID,
			&rec.PatientID,
			&rec.Timestamp,
			&rec.TriggerType,
			&rec.TriggerReason,
			&vitalSigns,
			&systemStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vitals_history row: %w", err)
		}
		if err := json.Unmarshal(vitalSigns, &rec.VitalSigns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vital_signs for %s: %w", rec.RecordID, err)
		}
		if err := json.Unmarshal(systemStatus, &rec.SystemStatus); err != nil {
			return nil, fmt.Errorf("failed to unmarshal system_status for %s: %w", rec.RecordID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vitals_history rows: %w", err)
	}
	return records, nil
}

func (p *PostgresLog) Save(ctx context.Context, records []domain.MedicalRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, rec := range records {
		vitalSigns, err := json.Marshal(rec.VitalSigns)
		if err != nil {
			return fmt.Errorf("failed to marshal vital_signs for %s: %w", rec.RecordID, err)
		}
		systemStatus, err := json.Marshal(rec.SystemStatus)
		if err != nil {
			return fmt.Errorf("failed to marshal system_status for %s: %w", rec.RecordID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO vitals_history (record_id, patient_id, recorded_at, trigger_type,
			                            trigger_reason, vital_signs, system_status, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (record_id)
			DO UPDATE SET patient_id = EXCLUDED.patient_id,
			              recorded_at = EXCLUDED.recorded_at,
			              trigger_type = EXCLUDED.trigger_type,
			              trigger_reason = EXCLUDED.trigger_reason,
			              vital_signs = EXCLUDED.vital_signs,
			              system_status = EXCLUDED.system_status,
			              position = EXCLUDED.position`,
			rec.RecordID,
			rec.PatientID,
			rec.Timestamp,
			rec.TriggerType,
			rec.TriggerReason,
			vitalSigns,
			systemStatus,
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.RecordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vitals_history save: %w", err)
	}
	return nil
}
