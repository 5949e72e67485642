// Package session hosts conversation state between turns. Each session owns
// one flow.State; the manager serializes turns per session so at most one
// state mutation is in flight at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hrtools/onboardbot/flow"
	"github.com/hrtools/onboardbot/patch"
	"github.com/hrtools/onboardbot/store"
	"github.com/hrtools/onboardbot/types"
)

var ErrUnknownSession = errors.New("unknown session")

type Manager struct {
	flow   *flow.Flow
	states store.Store[flow.State]

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(f *flow.Flow, core store.Cache[flow.State]) *Manager {
	return &Manager{
		flow:   f,
		states: store.New(core, "onboarding:state", store.SessionKeyFromContext),
		locks:  map[string]*sync.Mutex{},
	}
}

func (m *Manager) lock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// New creates a session, runs the seeded first dispatch and returns the
// session id plus the welcome state.
func (m *Manager) New(ctx context.Context) (string, flow.State, error) {
	id := uuid.NewString()
	ctx = store.WithSessionKey(ctx, id)
	st, err := m.flow.Begin(ctx)
	if err != nil {
		return "", flow.State{}, fmt.Errorf("begin session: %w", err)
	}
	if err := m.states.Set(ctx, st); err != nil {
		return "", flow.State{}, fmt.Errorf("save session state: %w", err)
	}
	return id, st, nil
}

// HandleTurn runs one utterance through the flow and returns the new state
// plus the assistant messages this turn produced.
func (m *Manager) HandleTurn(ctx context.Context, id, utterance string) (flow.State, []types.Message, error) {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	ctx = store.WithSessionKey(ctx, id)
	st, ok, err := m.states.Get(ctx)
	if err != nil {
		return flow.State{}, nil, fmt.Errorf("load session state: %w", err)
	}
	if !ok {
		return flow.State{}, nil, ErrUnknownSession
	}

	before := len(st.History)
	next, err := m.flow.Invoke(ctx, st, utterance)
	if err != nil {
		return flow.State{}, nil, fmt.Errorf("invoke flow: %w", err)
	}
	if err := m.states.Set(ctx, next); err != nil {
		return flow.State{}, nil, fmt.Errorf("save session state: %w", err)
	}
	// Skip the appended user message; the rest of the growth is assistant
	// output for this turn.
	return next, next.History[before+1:], nil
}

// Upload ingests extracted records and runs the synthetic upload turn, so
// the user immediately sees the review table.
func (m *Manager) Upload(ctx context.Context, id string, records []types.EmployeeRecord) (flow.State, []types.Message, error) {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	ctx = store.WithSessionKey(ctx, id)
	st, ok, err := m.states.Get(ctx)
	if err != nil {
		return flow.State{}, nil, fmt.Errorf("load session state: %w", err)
	}
	if !ok {
		return flow.State{}, nil, ErrUnknownSession
	}

	st = m.flow.IngestRecords(st, records)
	before := len(st.History)
	next, err := m.flow.Invoke(ctx, st, "File Uploaded and Processed")
	if err != nil {
		return flow.State{}, nil, fmt.Errorf("invoke flow: %w", err)
	}
	if err := m.states.Set(ctx, next); err != nil {
		return flow.State{}, nil, fmt.Errorf("save session state: %w", err)
	}
	return next, next.History[before+1:], nil
}

// Edit applies grid edits to the session's batch.
func (m *Manager) Edit(ctx context.Context, id string, ops []patch.Operation) (flow.State, error) {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	ctx = store.WithSessionKey(ctx, id)
	st, ok, err := m.states.Get(ctx)
	if err != nil {
		return flow.State{}, fmt.Errorf("load session state: %w", err)
	}
	if !ok {
		return flow.State{}, ErrUnknownSession
	}

	next, err := m.flow.EditBatch(st, ops)
	if err != nil {
		return flow.State{}, err
	}
	if err := m.states.Set(ctx, next); err != nil {
		return flow.State{}, fmt.Errorf("save session state: %w", err)
	}
	return next, nil
}

// State returns the current state of a session.
func (m *Manager) State(ctx context.Context, id string) (flow.State, bool, error) {
	ctx = store.WithSessionKey(ctx, id)
	return m.states.Get(ctx)
}

// End destroys a session's state.
func (m *Manager) End(ctx context.Context, id string) error {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	ctx = store.WithSessionKey(ctx, id)
	if err := m.states.Del(ctx); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	return nil
}
