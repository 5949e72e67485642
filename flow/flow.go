// Package flow implements the conversation graph driving employee
// onboarding: a router dispatching each user turn to one named step, the
// steps themselves, and the per-episode state they transform.
package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrtools/onboardbot/patch"
	"github.com/hrtools/onboardbot/sink"
	"github.com/hrtools/onboardbot/types"
)

// Continuation is a step's decision about what happens after it runs:
// suspend and wait for fresh input, or chain straight into another step.
type Continuation struct {
	next  StepID
	chain bool
}

func Suspend() Continuation {
	return Continuation{}
}

func Continue(next StepID) Continuation {
	return Continuation{next: next, chain: true}
}

// Step transforms a turn-private state copy and decides the continuation.
type Step func(ctx context.Context, st State) (State, Continuation, error)

// maxChain bounds step chaining per turn. The graph is not a free-running
// automaton: the single designed auto-chain is upload-ack into review.
const maxChain = 2

type Flow struct {
	sink   sink.Sink
	router *Router
	steps  map[StepID]Step
}

type Option func(*Flow)

// WithRules replaces the router dispatch table.
func WithRules(rules []Rule) Option {
	return func(f *Flow) {
		f.router = NewRouter(rules)
	}
}

func New(recordSink sink.Sink, opts ...Option) *Flow {
	f := &Flow{
		sink:   recordSink,
		router: NewRouter(DefaultRules()),
	}
	f.steps = map[StepID]Step{
		StepStart:        f.stepStart,
		StepUploadAck:    f.stepUploadAck,
		StepBeginManual:  f.stepBeginManual,
		StepCollectField: f.stepCollectField,
		StepReview:       f.stepReview,
		StepPersist:      f.stepPersist,
		StepReset:        f.stepReset,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Route exposes the router decision without executing anything.
func (f *Flow) Route(st State) StepID {
	return f.router.Route(st)
}

// Begin runs the first dispatch over a freshly seeded state, producing the
// welcome prompt.
func (f *Flow) Begin(ctx context.Context) (State, error) {
	return f.run(ctx, NewState())
}

// Invoke runs one conversational turn: the utterance is appended to the
// history, the router picks a step, and steps execute until one suspends.
// The input state is never mutated; the returned state is a new value.
func (f *Flow) Invoke(ctx context.Context, st State, utterance string) (State, error) {
	next := st.Clone()
	next.push(types.UserMessage(utterance))
	return f.run(ctx, next)
}

func (f *Flow) run(ctx context.Context, st State) (State, error) {
	id := f.router.Route(st)
	for i := 0; i < maxChain; i++ {
		step, ok := f.steps[id]
		if !ok {
			return st, fmt.Errorf("no step registered for %q", id)
		}
		slog.Debug("executing step", "step", id, "pending_field", st.PendingField, "batch_len", len(st.Batch))
		out, cont, err := step(ctx, st)
		if err != nil {
			// No step failure is fatal to the session: report and suspend.
			slog.Error("step failed", "step", id, "error", err)
			st.push(types.AssistantMessage(fmt.Sprintf("Sorry, something went wrong while handling that: %s", err)))
			return st, nil
		}
		st = out
		if !cont.chain {
			return st, nil
		}
		id = cont.next
	}
	return st, nil
}

// IngestRecords hands extracted upload results to the conversation. The
// extraction collaborator populates the batch through this entry point
// before the upload turn arrives; one record per input row is preserved,
// sentinel-valued failures included.
func (f *Flow) IngestRecords(st State, records []types.EmployeeRecord) State {
	next := st.Clone()
	next.Batch = append(next.Batch, records...)
	return next
}

// EditBatch applies grid edits to the batch as RFC6902 operations. This is
// how the transport writes table edits back without touching state fields.
func (f *Flow) EditBatch(st State, ops []patch.Operation) (State, error) {
	next := st.Clone()
	edited, err := patch.ApplyToBatch(next.Batch, ops)
	if err != nil {
		return st, fmt.Errorf("apply batch edits: %w", err)
	}
	next.Batch = edited
	return next, nil
}
