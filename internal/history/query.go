package history

import (
	"fmt"
	"sort"

	"wisefido-vitals/internal/domain"
)

// QueryOptions are the optional history filters. Zero values mean
// "not supplied".
type QueryOptions struct {
	Limit     int
	PatientID string
	StartDate string
	EndDate   string
}

// QueryResult is the history read response. FilteredCount is the size
// after filtering and truncation; TotalCount the unfiltered collection
// size.
type QueryResult struct {
	Records       []domain.MedicalRecord `json:"records"`
	TotalCount    int                    `json:"total_count"`
	FilteredCount int                    `json:"filtered_count"`
}

// runQuery filters by exact patient_id, then by timestamp range
// (ISO-8601 timestamps are lexicographically ordered, so plain string
// comparison is correct), sorts newest first and truncates to the limit.
// This is a read path: any internal failure degrades to an empty result
// instead of reaching the caller.
func runQuery(records []domain.MedicalRecord, opts QueryOptions) (result QueryResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = QueryResult{
				Records:    []domain.MedicalRecord{},
				TotalCount: len(records),
			}
			err = fmt.Errorf("%w: %v", domain.ErrQuery, r)
		}
	}()

	filtered := make([]domain.MedicalRecord, 0, len(records))
	for _, rec := range records {
		if opts.PatientID != "" && rec.PatientID != opts.PatientID {
			continue
		}
		if opts.StartDate != "" && rec.Timestamp < opts.StartDate {
			continue
		}
		if opts.EndDate != "" && rec.Timestamp > opts.EndDate {
			continue
		}
		filtered = append(filtered, rec)
	}

	// newest first; records without a timestamp sort as oldest
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp > filtered[j].Timestamp
	})

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}

	return QueryResult{
		Records:       filtered,
		TotalCount:    len(records),
		FilteredCount: len(filtered),
	}, nil
}
