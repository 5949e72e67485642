package flow

import (
	"context"

	"github.com/hrtools/onboardbot/types"
	"github.com/hrtools/onboardbot/validate"
)

const (
	optionUpload     = "Upload Excel File"
	optionManual     = "Enter Manually"
	optionSave       = "Proceed to Save"
	optionModify     = "Modify Data"
	optionAddAnother = "Add Another Manually"
)

func (f *Flow) stepStart(_ context.Context, st State) (State, Continuation, error) {
	st.push(types.ChoiceMessage(
		"Welcome to the employee onboarding flow! How would you like to provide employee details?",
		optionUpload, optionManual,
	))
	return st, Suspend(), nil
}

// stepUploadAck reacts to "data has arrived" after the extraction
// collaborator has populated the batch. It always chains into review so the
// user sees the extracted table without an extra empty turn.
func (f *Flow) stepUploadAck(_ context.Context, st State) (State, Continuation, error) {
	st.push(types.AssistantMessage("File processed. Here is the extracted data. Please review it carefully."))
	return st, Continue(StepReview), nil
}

func (f *Flow) stepBeginManual(_ context.Context, st State) (State, Continuation, error) {
	st.Draft = map[string]string{}
	st.PendingField = FieldOrder[0]
	st.push(types.AssistantMessage(promptFor(FieldOrder[0])))
	return st, Suspend(), nil
}

// stepCollectField stores the raw utterance for the pending field and
// advances. No validation happens here; answers are checked at review and
// persist so the user can type freely and be corrected later.
func (f *Flow) stepCollectField(_ context.Context, st State) (State, Continuation, error) {
	field := st.PendingField
	if fieldIndex(field) < 0 {
		// Corrupted pending-field state: restart the draft instead of
		// guessing. Completed batch entries are untouched.
		st.Draft = map[string]string{}
		st.PendingField = FieldOrder[0]
		st.push(types.AssistantMessage("Something went wrong with the current entry, so let's restart it. " + promptFor(FieldOrder[0])))
		return st, Suspend(), nil
	}
	if st.Draft == nil {
		st.Draft = map[string]string{}
	}
	st.Draft[field] = st.LastContent()

	if next, ok := nextField(field); ok {
		st.PendingField = next
		st.push(types.AssistantMessage(promptFor(next)))
		return st, Suspend(), nil
	}

	st.Batch = append(st.Batch, recordFromDraft(st.Draft))
	st.Draft = nil
	st.PendingField = ""
	st.push(types.AssistantMessage("All details for one employee have been collected."))
	pushReview(&st)
	return st, Suspend(), nil
}

// stepReview is a read-only projection of the batch. Safe to re-invoke.
func (f *Flow) stepReview(_ context.Context, st State) (State, Continuation, error) {
	if len(st.Batch) == 0 {
		st.push(types.ChoiceMessage(
			"There is no employee data to review yet. How would you like to provide employee details?",
			optionManual, optionUpload,
		))
		return st, Suspend(), nil
	}
	pushReview(&st)
	return st, Suspend(), nil
}

func pushReview(st *State) {
	st.push(types.TableMessage(
		"Please review the collected data. Do you want to proceed with saving, modify the data, or add another employee manually?",
		st.Batch,
	))
	if problems := validate.Batch(st.Batch); len(problems) > 0 {
		st.push(types.AssistantMessage("Some entries need attention before saving:\n" + validate.FormatProblems(problems)))
	}
	st.push(types.ChoiceMessage("", optionSave, optionModify, optionAddAnother))
}

// stepPersist hands the batch to the sink. The sink never errors to us;
// failure comes back as a message and the batch is preserved so no data is
// lost. Success clears the episode's collected data.
func (f *Flow) stepPersist(ctx context.Context, st State) (State, Continuation, error) {
	if len(st.Batch) == 0 {
		st.push(types.ChoiceMessage(
			"There is nothing to save yet. How would you like to provide employee details?",
			optionManual, optionUpload,
		))
		return st, Suspend(), nil
	}
	outcome := f.sink.Save(ctx, st.Batch)
	if !outcome.OK {
		st.push(types.AssistantMessage(outcome.Message))
		return st, Suspend(), nil
	}
	st.Batch = nil
	st.Draft = nil
	st.PendingField = ""
	st.push(types.AssistantMessage(outcome.Message + "\nThe onboarding process is complete. You are now back in standard chat mode."))
	return st, Suspend(), nil
}

func (f *Flow) stepReset(_ context.Context, st State) (State, Continuation, error) {
	st.Batch = nil
	st.Draft = nil
	st.PendingField = ""
	st.push(types.ChoiceMessage(
		"All collected data has been cleared. How would you like to start over?",
		optionUpload, optionManual,
	))
	return st, Suspend(), nil
}
