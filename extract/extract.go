// Package extract turns free text or tabular rows into structured employee
// records. Extraction never drops a row: failures become sentinel-valued
// records so downstream review always shows one entry per input row.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrtools/onboardbot/types"
	"github.com/hrtools/onboardbot/validate"
)

type Extractor interface {
	Extract(ctx context.Context, text string) (types.EmployeeRecord, error)
}

// Failback tries each extractor in order and returns the first success.
type Failback struct {
	extractors []Extractor
}

func NewFailback(extractors ...Extractor) *Failback {
	return &Failback{extractors: extractors}
}

func (f *Failback) Extract(ctx context.Context, text string) (types.EmployeeRecord, error) {
	var lastErr error
	for _, ex := range f.extractors {
		rec, err := ex.Extract(ctx, text)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return types.EmployeeRecord{}, fmt.Errorf("all extractors failed: %w", lastErr)
}

// All runs the extractor over every row and always returns one record per
// row; failures become sentinel records.
func All(ctx context.Context, ex Extractor, rows []string) []types.EmployeeRecord {
	out := make([]types.EmployeeRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := ex.Extract(ctx, row)
		if err != nil {
			slog.Warn("extraction failed, keeping sentinel record", "error", err)
			out = append(out, types.SentinelRecord())
			continue
		}
		out = append(out, Normalize(rec))
	}
	return out
}

// Normalize applies the upload-path cleanups: free-text fields are
// sanitized and an invalid phone is flagged in place rather than dropped.
func Normalize(rec types.EmployeeRecord) types.EmployeeRecord {
	rec.Name = validate.Sanitize(rec.Name)
	rec.Designation = validate.Sanitize(rec.Designation)
	if rec.Phone == "" {
		rec.Phone = types.SentinelUnknown
	}
	if !validate.Phone(rec.Phone) {
		rec.Phone = "INVALID - " + rec.Phone
	}
	return rec
}
