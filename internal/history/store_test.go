package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"wisefido-vitals/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingLog struct {
	loadErr error
	saveErr error
}

func (f *failingLog) Load(ctx context.Context) ([]domain.MedicalRecord, error) {
	return nil, f.loadErr
}

func (f *failingLog) Save(ctx context.Context, records []domain.MedicalRecord) error {
	return f.saveErr
}

func TestStore_AppendThenLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	ctx := context.Background()

	store := NewStore(ctx, NewFileLog(path), zap.NewNop())
	require.Equal(t, 0, store.Len())

	rec, err := store.Append(ctx, makeRecord("patient-1", "rec-1", "2026-08-24T10:00:00.000000"))
	require.NoError(t, err)

	// a fresh store over the same file sees exactly the appended record
	reloaded := NewStore(ctx, NewFileLog(path), zap.NewNop())
	require.Equal(t, 1, reloaded.Len())
	result, err := reloaded.Query(QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, rec, result.Records[0])
}

func TestStore_AppendAssignsRecordIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewFileLog(filepath.Join(t.TempDir(), "h.json")), zap.NewNop())

	rec, err := store.Append(ctx, domain.MedicalRecord{PatientID: "p", TriggerType: "manual"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.RecordID)
	assert.NotEmpty(t, rec.Timestamp)
	// generated timestamp parses in the wire layout
	assert.Len(t, rec.Timestamp, len(domain.TimestampLayout))

	other, err := store.Append(ctx, domain.MedicalRecord{PatientID: "p"})
	require.NoError(t, err)
	assert.NotEqual(t, rec.RecordID, other.RecordID)
}

func TestStore_AppendKeepsCallerIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewFileLog(filepath.Join(t.TempDir(), "h.json")), zap.NewNop())

	rec, err := store.Append(ctx, makeRecord("p", "caller-id", "2026-08-24T10:00:00.000000"))
	require.NoError(t, err)
	assert.Equal(t, "caller-id", rec.RecordID)
	assert.Equal(t, "2026-08-24T10:00:00.000000", rec.Timestamp)
}

func TestStore_LoadFailureStartsFresh(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, &failingLog{loadErr: errors.New("disk gone")}, zap.NewNop())

	assert.Equal(t, 0, store.Len())
	result, err := store.Query(QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Records)
}

func TestStore_SaveFailureStillUpdatesMemory(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, &failingLog{saveErr: errors.New("disk full")}, zap.NewNop())

	rec, err := store.Append(ctx, makeRecord("p", "r1", "2026-08-24T10:00:00.000000"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.Equal(t, "r1", rec.RecordID)

	// availability over durability: the record is queryable anyway
	assert.Equal(t, 1, store.Len())
	result, qerr := store.Query(QueryOptions{})
	require.NoError(t, qerr)
	assert.Equal(t, "r1", result.Records[0].RecordID)
}

func TestStore_Recent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewFileLog(filepath.Join(t.TempDir(), "h.json")), zap.NewNop())

	for i := 0; i < 15; i++ {
		_, err := store.Append(ctx, domain.MedicalRecord{PatientID: "p"})
		require.NoError(t, err)
	}

	recent := store.Recent(10)
	require.Len(t, recent, 10)
	for i := 1; i < len(recent); i++ {
		assert.GreaterOrEqual(t, recent[i-1].Timestamp, recent[i].Timestamp)
	}
}
