// Package sink provides the best-effort local persistence for validated
// employee records.
package sink

import (
	"context"

	"github.com/hrtools/onboardbot/types"
)

// Outcome reports one save attempt. Save never returns a Go error to the
// caller: failures travel back to the conversation as the outcome message,
// with OK false, so the flow can preserve the batch.
type Outcome struct {
	Message string `json:"message"`
	OK      bool   `json:"ok"`
}

type Sink interface {
	// Save appends the records. Empty input is a no-op outcome.
	Save(ctx context.Context, records []types.EmployeeRecord) Outcome
	// Load returns everything previously saved, oldest first.
	Load(ctx context.Context) ([]types.EmployeeRecord, error)
}
