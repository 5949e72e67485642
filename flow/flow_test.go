package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/hrtools/onboardbot/patch"
	"github.com/hrtools/onboardbot/sink"
	"github.com/hrtools/onboardbot/types"
)

func lastMessage(t *testing.T, st State) types.Message {
	t.Helper()
	if len(st.History) == 0 {
		t.Fatal("history is empty")
	}
	return st.History[len(st.History)-1]
}

func invokeAll(t *testing.T, f *Flow, st State, utterances ...string) State {
	t.Helper()
	ctx := context.Background()
	for _, u := range utterances {
		next, err := f.Invoke(ctx, st, u)
		if err != nil {
			t.Fatalf("Invoke(%q): %v", u, err)
		}
		st = next
	}
	return st
}

func TestBeginEmitsWelcomeChoice(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st, err := f.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	msg := lastMessage(t, st)
	if msg.Kind != types.KindChoice {
		t.Errorf("welcome message kind = %q, want %q", msg.Kind, types.KindChoice)
	}
	want := []string{"Upload Excel File", "Enter Manually"}
	if diff := cmp.Diff(want, msg.Options); diff != "" {
		t.Errorf("welcome options mismatch (-want +got):\n%s", diff)
	}
}

func TestManualCollectionScenario(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := invokeAll(t, f, NewState(),
		"Start Onboarding", "Enter Manually", "Alice", "5551234567", "Engineer", "90000")

	wantBatch := []types.EmployeeRecord{
		{Name: "Alice", Phone: "5551234567", Designation: "Engineer", Salary: 90000},
	}
	if diff := cmp.Diff(wantBatch, st.Batch); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
	if st.PendingField != "" {
		t.Errorf("PendingField = %q, want empty", st.PendingField)
	}
	if len(st.Draft) != 0 {
		t.Errorf("Draft = %v, want empty", st.Draft)
	}

	// Completion emits a table of the batch followed by the review choices.
	msg := lastMessage(t, st)
	if msg.Kind != types.KindChoice {
		t.Fatalf("final message kind = %q, want %q", msg.Kind, types.KindChoice)
	}
	wantOptions := []string{"Proceed to Save", "Modify Data", "Add Another Manually"}
	if diff := cmp.Diff(wantOptions, msg.Options); diff != "" {
		t.Errorf("review options mismatch (-want +got):\n%s", diff)
	}
	var sawTable bool
	for _, m := range st.History {
		if m.Kind == types.KindTable {
			sawTable = true
		}
	}
	if !sawTable {
		t.Error("completing a record did not emit a table message")
	}
}

func TestCollectFieldAsksEachFieldInOrder(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := invokeAll(t, f, NewState(), "Enter Manually")
	if st.PendingField != "name" {
		t.Fatalf("PendingField = %q, want %q", st.PendingField, "name")
	}

	for _, step := range []struct {
		answer      string
		nextField   string
		promptsWord string
	}{
		{"Bob", "phone", "phone"},
		{"9876543210", "designation", "designation"},
		{"Analyst", "salary", "salary"},
	} {
		st = invokeAll(t, f, st, step.answer)
		if st.PendingField != step.nextField {
			t.Fatalf("after %q PendingField = %q, want %q", step.answer, st.PendingField, step.nextField)
		}
		if content := lastMessage(t, st).Content; !strings.Contains(content, step.promptsWord) {
			t.Errorf("prompt %q does not mention %q", content, step.promptsWord)
		}
	}
}

func TestSaveWithEmptyBatchDoesNotCallSink(t *testing.T) {
	t.Parallel()
	mem := sink.NewMemory()
	f := New(mem)
	st := invokeAll(t, f, NewState(), "Save Data")

	if mem.SaveCalls != 0 {
		t.Errorf("sink Save was called %d times, want 0", mem.SaveCalls)
	}
	msg := lastMessage(t, st)
	want := []string{"Enter Manually", "Upload Excel File"}
	if diff := cmp.Diff(want, msg.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistFailurePreservesBatch(t *testing.T) {
	t.Parallel()
	mem := sink.NewMemory()
	mem.FailWith = "Error saving to database: disk full"
	f := New(mem)

	st := invokeAll(t, f, NewState(), "Enter Manually", "Carol", "5550001111", "Manager", "120000")
	batchBefore := append([]types.EmployeeRecord(nil), st.Batch...)

	st = invokeAll(t, f, st, "Proceed to Save")

	if diff := cmp.Diff(batchBefore, st.Batch); diff != "" {
		t.Errorf("batch changed across failed persist (-before +after):\n%s", diff)
	}
	if content := lastMessage(t, st).Content; !strings.Contains(content, "disk full") {
		t.Errorf("failure message %q does not surface the sink error verbatim", content)
	}
}

func TestPersistSuccessClearsBatch(t *testing.T) {
	t.Parallel()
	mem := sink.NewMemory()
	f := New(mem)

	st := invokeAll(t, f, NewState(), "Enter Manually", "Dave", "5552223333", "Designer", "80000")
	st = invokeAll(t, f, st, "Proceed to Save")

	if len(st.Batch) != 0 {
		t.Errorf("batch not cleared after successful persist: %v", st.Batch)
	}
	saved, err := mem.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(saved) != 1 || saved[0].Name != "Dave" {
		t.Errorf("sink contents = %v, want the one saved record", saved)
	}
	if content := lastMessage(t, st).Content; !strings.Contains(content, "complete") {
		t.Errorf("completion message %q does not announce completion", content)
	}
}

func TestResetClearsEverything(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := invokeAll(t, f, NewState(), "Enter Manually", "Eve", "5554445555")
	st.Batch = append(st.Batch, types.EmployeeRecord{Name: "Old", Phone: "1112223334", Designation: "X", Salary: 1})

	st = invokeAll(t, f, st, "Clear")

	empty := State{Batch: nil, Draft: nil, PendingField: ""}
	got := State{Batch: st.Batch, Draft: st.Draft, PendingField: st.PendingField}
	if diff := cmp.Diff(empty, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("reset left data behind (-want +got):\n%s", diff)
	}
	if msg := lastMessage(t, st); msg.Kind != types.KindChoice {
		t.Errorf("reset message kind = %q, want choice", msg.Kind)
	}
}

func TestCorruptedPendingFieldRestartsDraft(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := NewState()
	st.Batch = []types.EmployeeRecord{{Name: "Kept", Phone: "5556667777", Designation: "QA", Salary: 50000}}
	st.PendingField = "bogus-field"
	st.Draft = map[string]string{"bogus-field": "junk"}

	st = invokeAll(t, f, st, "whatever")

	if st.PendingField != "name" {
		t.Errorf("PendingField = %q, want %q", st.PendingField, "name")
	}
	if len(st.Draft) != 0 {
		t.Errorf("Draft = %v, want restarted empty draft", st.Draft)
	}
	if len(st.Batch) != 1 || st.Batch[0].Name != "Kept" {
		t.Errorf("recovery lost completed batch entries: %v", st.Batch)
	}
}

func TestUnrecognizedInputRestartsTopLevelChoice(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := invokeAll(t, f, NewState(), "asdf123")

	msg := lastMessage(t, st)
	if msg.Kind != types.KindChoice {
		t.Fatalf("message kind = %q, want choice", msg.Kind)
	}
	if !strings.Contains(msg.Content, "Welcome to the employee onboarding flow") {
		t.Errorf("fallback did not re-emit the initial prompt: %q", msg.Content)
	}
}

func TestUploadAutoChainsIntoReview(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	records := []types.EmployeeRecord{
		{Name: "Frank", Phone: "5551112222", Designation: "Intern", Salary: 30000},
		{Name: types.SentinelExtractionError, Phone: types.SentinelUnknown, Designation: types.SentinelUnknown},
	}
	st := f.IngestRecords(NewState(), records)
	before := len(st.History)

	st = invokeAll(t, f, st, "File Uploaded and Processed")

	turn := st.History[before:]
	if len(turn) < 3 {
		t.Fatalf("upload turn produced %d messages, want ack + table + choice", len(turn))
	}
	if !strings.Contains(turn[1].Content, "File processed") {
		t.Errorf("first assistant message = %q, want the upload acknowledgement", turn[1].Content)
	}
	var sawTable bool
	for _, msg := range turn {
		if msg.Kind == types.KindTable {
			sawTable = true
			if diff := cmp.Diff(records, msg.Payload); diff != "" {
				t.Errorf("table payload mismatch (-want +got):\n%s", diff)
			}
		}
	}
	if !sawTable {
		t.Error("upload turn did not surface the review table in the same turn")
	}
	// The sentinel row stays in the batch for correction.
	if len(st.Batch) != 2 {
		t.Errorf("batch length = %d, want 2", len(st.Batch))
	}
}

func TestReviewWithEmptyBatchOffersEntryModes(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := invokeAll(t, f, NewState(), "review")

	msg := lastMessage(t, st)
	want := []string{"Enter Manually", "Upload Excel File"}
	if diff := cmp.Diff(want, msg.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewIsIdempotent(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := invokeAll(t, f, NewState(), "Enter Manually", "Grace", "5559998888", "Lead", "150000")

	first := invokeAll(t, f, st, "review")
	second := invokeAll(t, f, first, "review")

	if diff := cmp.Diff(first.Batch, second.Batch); diff != "" {
		t.Errorf("review mutated the batch (-first +second):\n%s", diff)
	}
	if second.PendingField != first.PendingField {
		t.Errorf("review changed PendingField from %q to %q", first.PendingField, second.PendingField)
	}
}

func TestInvokeDoesNotMutateInputState(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := NewState()
	st.Batch = []types.EmployeeRecord{{Name: "Henry", Phone: "5550009999", Designation: "Ops", Salary: 70000}}
	snapshot := st.Clone()

	if _, err := f.Invoke(context.Background(), st, "review"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if diff := cmp.Diff(snapshot, st, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Invoke mutated its input state (-snapshot +after):\n%s", diff)
	}
}

func TestEditBatchAppliesGridEdits(t *testing.T) {
	t.Parallel()
	f := New(sink.NewMemory())
	st := NewState()
	st.Batch = []types.EmployeeRecord{
		{Name: "Ida", Phone: "5551230000", Designation: "PM", Salary: 95000},
		{Name: "Drop Me", Phone: "0", Designation: "X", Salary: 1},
	}

	edited, err := f.EditBatch(st, []patch.Operation{
		{Op: "replace", Path: "/0/salary", Value: 99000},
		{Op: "remove", Path: "/1"},
	})
	if err != nil {
		t.Fatalf("EditBatch: %v", err)
	}
	want := []types.EmployeeRecord{{Name: "Ida", Phone: "5551230000", Designation: "PM", Salary: 99000}}
	if diff := cmp.Diff(want, edited.Batch); diff != "" {
		t.Errorf("edited batch mismatch (-want +got):\n%s", diff)
	}
	if len(st.Batch) != 2 {
		t.Error("EditBatch mutated the input state")
	}
}
