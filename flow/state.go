package flow

import "github.com/hrtools/onboardbot/types"

// State is the serializable record carried across turns of one onboarding
// episode. It is owned by the hosting session and mutated only through step
// execution or the explicit flow entry points (IngestRecords, EditBatch);
// the transport layer never touches its fields directly.
type State struct {
	// History is append-only within a session. Entries are never reordered
	// or deleted.
	History []types.Message `json:"history"`
	// Batch holds the records collected so far in this episode. It is
	// cleared only by an explicit save or clear, never implicitly.
	Batch []types.EmployeeRecord `json:"batch"`
	// Draft holds raw field answers for the record under construction. It
	// exists only while PendingField is set.
	Draft map[string]string `json:"draft,omitempty"`
	// PendingField is the field the collector expects an answer for. Empty
	// means "not in manual-entry mode" and is the sentinel the router uses
	// to tell field answers from commands.
	PendingField string `json:"pending_field"`
}

// NewState seeds a fresh episode with the synthetic start message, the same
// way the hosting session enters onboarding mode.
func NewState() State {
	return State{History: []types.Message{types.UserMessage("Start Onboarding")}}
}

// Clone deep-copies the state so a turn can run on a private value.
func (s State) Clone() State {
	out := State{PendingField: s.PendingField}
	if s.History != nil {
		out.History = make([]types.Message, len(s.History))
		for i, msg := range s.History {
			if msg.Options != nil {
				msg.Options = append([]string(nil), msg.Options...)
			}
			if msg.Payload != nil {
				msg.Payload = append([]types.EmployeeRecord(nil), msg.Payload...)
			}
			out.History[i] = msg
		}
	}
	if s.Batch != nil {
		out.Batch = append([]types.EmployeeRecord(nil), s.Batch...)
	}
	if s.Draft != nil {
		out.Draft = make(map[string]string, len(s.Draft))
		for k, v := range s.Draft {
			out.Draft[k] = v
		}
	}
	return out
}

// LastContent returns the content of the most recent message, or "".
func (s State) LastContent() string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1].Content
}

func (s *State) push(msg types.Message) {
	s.History = append(s.History, msg)
}
