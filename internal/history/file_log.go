package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"wisefido-vitals/internal/domain"
)

// FileLog keeps the history as one JSON file. Every Save rewrites the
// whole file through a temp file + rename, so the file on disk is always a
// complete snapshot of the full history.
type FileLog struct {
	path string
}

func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

func (f *FileLog) Load(ctx context.Context) ([]domain.MedicalRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file %s: %w", f.path, err)
	}

	var records []domain.MedicalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", f.path, err)
	}
	return records, nil
}

func (f *FileLog) Save(ctx context.Context, records []domain.MedicalRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
