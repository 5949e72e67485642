package sink

import (
	"context"
	"sync"

	"github.com/hrtools/onboardbot/types"
)

// Memory is an in-memory sink for tests and the CLI demo. FailWith, when
// set, makes every non-empty save report that message as a failure.
type Memory struct {
	mu        sync.Mutex
	records   []types.EmployeeRecord
	SaveCalls int
	FailWith  string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, records []types.EmployeeRecord) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if len(records) == 0 {
		return Outcome{Message: "No data to save.", OK: true}
	}
	if m.FailWith != "" {
		return Outcome{Message: m.FailWith}
	}
	m.records = append(m.records, records...)
	return Outcome{Message: saveMessage(len(records), "memory"), OK: true}
}

func (m *Memory) Load(_ context.Context) ([]types.EmployeeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.EmployeeRecord(nil), m.records...), nil
}
