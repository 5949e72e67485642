package sink

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hrtools/onboardbot/types"
)

func TestCSVSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	c := NewCSV(filepath.Join(t.TempDir(), "employees.csv"))
	ctx := context.Background()

	records := []types.EmployeeRecord{
		{Name: "Alice", Phone: "5551234567", Designation: "Engineer", Salary: 90000},
	}
	outcome := c.Save(ctx, records)
	if !outcome.OK {
		t.Fatalf("Save failed: %s", outcome.Message)
	}
	if !strings.Contains(outcome.Message, "1 employee(s)") {
		t.Errorf("save message = %q", outcome.Message)
	}

	loaded, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(records, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVSaveAppendsWithSingleHeader(t *testing.T) {
	t.Parallel()
	c := NewCSV(filepath.Join(t.TempDir(), "employees.csv"))
	ctx := context.Background()

	first := []types.EmployeeRecord{{Name: "Alice", Phone: "5551234567", Designation: "Engineer", Salary: 90000}}
	second := []types.EmployeeRecord{{Name: "Bob", Phone: "5557654321", Designation: "Analyst", Salary: 70000.50}}
	if outcome := c.Save(ctx, first); !outcome.OK {
		t.Fatalf("first Save failed: %s", outcome.Message)
	}
	if outcome := c.Save(ctx, second); !outcome.OK {
		t.Fatalf("second Save failed: %s", outcome.Message)
	}

	loaded, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := append(first, second...)
	if diff := cmp.Diff(want, loaded); diff != "" {
		t.Errorf("appended batches mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVLoadMissingFile(t *testing.T) {
	t.Parallel()
	c := NewCSV(filepath.Join(t.TempDir(), "nothing-here.csv"))
	loaded, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Load of a missing file = %v, want empty", loaded)
	}
}
