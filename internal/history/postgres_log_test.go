package history

import (
	"context"
	"errors"
	"testing"

	"wisefido-vitals/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockPostgresLog(t *testing.T) (sqlmock.Sqlmock, *PostgresLog, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	log := NewPostgresLog(db, zap.NewNop())
	return mock, log, func() { db.Close() }
}

func TestPostgresLog_Load(t *testing.T) {
	mock, log, cleanup := setupMockPostgresLog(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{
		"record_id", "patient_id", "recorded_at", "trigger_type", "trigger_reason",
		"vital_signs", "system_status",
	}).AddRow(
		"rec-1", "patient-1", "2026-08-24T10:00:00.000000", "alert", "low spo2",
		[]byte(`{"heart_rate_bpm": 72, "spo2_percent": 91}`),
		[]byte(`{"device_id": "dev-1", "monitoring_status": "ACTIVE"}`),
	).AddRow(
		"rec-2", "patient-1", "2026-08-24T11:00:00.000000", "manual", "",
		[]byte(`{}`),
		[]byte(`{}`),
	)

	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	records, err := log.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "rec-1", records[0].RecordID)
	assert.Equal(t, "patient-1", records[0].PatientID)
	assert.Equal(t, 72.0, records[0].VitalSigns.HeartRateBPM)
	assert.Equal(t, 91.0, records[0].VitalSigns.SpO2Percent)
	assert.Equal(t, "dev-1", records[0].SystemStatus.DeviceID)
	assert.Equal(t, "rec-2", records[1].RecordID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_LoadEmpty(t *testing.T) {
	mock, log, cleanup := setupMockPostgresLog(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows([]string{
		"record_id", "patient_id", "recorded_at", "trigger_type", "trigger_reason",
		"vital_signs", "system_status",
	}))

	records, err := log.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_SaveUpsertsAllRecords(t *testing.T) {
	mock, log, cleanup := setupMockPostgresLog(t)
	defer cleanup()

	records := []domain.MedicalRecord{
		makeRecord("p", "rec-1", "2026-08-24T10:00:00.000000"),
		makeRecord("p", "rec-2", "2026-08-24T11:00:00.000000"),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO vitals_history`).
		WithArgs("rec-1", "p", "2026-08-24T10:00:00.000000", "manual", "",
			sqlmock.AnyArg(), sqlmock.AnyArg(), 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO vitals_history`).
		WithArgs("rec-2", "p", "2026-08-24T11:00:00.000000", "manual", "",
			sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, log.Save(context.Background(), records))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_SaveRollsBackOnError(t *testing.T) {
	mock, log, cleanup := setupMockPostgresLog(t)
	defer cleanup()

	records := []domain.MedicalRecord{makeRecord("p", "rec-1", "ts")}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO vitals_history`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := log.Save(context.Background(), records)
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLog_EnsureSchema(t *testing.T) {
	mock, log, cleanup := setupMockPostgresLog(t)
	defer cleanup()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS vitals_history`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, log.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
