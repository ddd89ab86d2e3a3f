// Package toggle manages the tri-state feature switches, their transition
// rules, aggregate counters, and the display filter predicate.
package toggle

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tlibouban/deploycheck/pkg/logger"
	"github.com/tlibouban/deploycheck/pkg/metrics"
)

// State is one of the three mutually exclusive switch states.
type State string

// Toggle states. Every toggle starts as StateNotExamined.
const (
	StateNotExamined State = "not-examined"
	StateRejected    State = "rejected"
	StateActivated   State = "activated"
)

// Kind selects which of the two transition tables a cycle applies. There is
// no third physical action.
type Kind string

// Transition kinds.
const (
	KindPrimary   Kind = "primary"
	KindSecondary Kind = "secondary"
)

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindPrimary, KindSecondary:
		return Kind(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// ParseState validates a raw state string.
func ParseState(raw string) (State, error) {
	switch State(raw) {
	case StateNotExamined, StateRejected, StateActivated:
		return State(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownState, raw)
	}
}

// Transition is the pure transition function: the new state depends only on
// the old state and the kind.
func Transition(s State, k Kind) State {
	if k == KindSecondary {
		switch s {
		case StateNotExamined:
			return StateRejected
		case StateRejected:
			return StateNotExamined
		default:
			return StateRejected
		}
	}
	switch s {
	case StateNotExamined:
		return StateActivated
	case StateActivated:
		return StateNotExamined
	default:
		return StateActivated
	}
}

// Counters is the derived aggregate over all registered toggles. It is
// recomputed from the full toggle set, never mutated independently.
type Counters struct {
	NotExamined int `json:"not_examined"`
	Rejected    int `json:"rejected"`
	Activated   int `json:"activated"`
}

// Total returns the sum of all three buckets.
func (c Counters) Total() int {
	return c.NotExamined + c.Rejected + c.Activated
}

// Notifier is the external totals collaborator. It is invoked with no
// arguments, synchronously, after every state change; its return value is
// ignored.
type Notifier func()

// Engine owns the toggle set. The rendering layer references toggles by id
// but never mutates them.
type Engine struct {
	mu      sync.RWMutex
	toggles map[string]State
	order   []string
	filter  *State // nil means all visible

	notify Notifier
	log    logger.Logger
}

// NewEngine constructs an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		toggles: make(map[string]State),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logger.Get().Named("toggle")
	}

	return e
}

// Register adds a toggle in the initial state and returns its id. An empty
// id gets a generated one. Registering an existing id is a no-op.
func (e *Engine) Register(id string) string {
	if id == "" {
		id = uuid.NewString()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.toggles[id]; exists {
		return id
	}
	e.toggles[id] = StateNotExamined
	e.order = append(e.order, id)
	metrics.UpdateToggleCount(len(e.toggles))
	return id
}

// Cycle applies the transition table for kind to the toggle's current state,
// stores the new state, and returns it. Every successful cycle triggers the
// totals notifier and a counter recompute, synchronously, before returning.
func (e *Engine) Cycle(ctx context.Context, id string, kind Kind) (State, error) {
	e.mu.Lock()
	old, exists := e.toggles[id]
	if !exists {
		e.mu.Unlock()
		return "", fmt.Errorf("%w: %q", ErrUnknownToggle, id)
	}
	next := Transition(old, kind)
	e.toggles[id] = next
	e.mu.Unlock()

	metrics.RecordToggleCycle(string(kind))
	c := e.Counters()
	e.log.Debug(ctx, "toggle cycled",
		logger.String("id", id),
		logger.String("kind", string(kind)),
		logger.String("from", string(old)),
		logger.String("to", string(next)),
		logger.Int("activated", c.Activated),
		logger.Int("rejected", c.Rejected),
		logger.Int("notExamined", c.NotExamined),
	)

	if e.notify != nil {
		e.notify()
		metrics.RecordTotalsNotification()
	}

	return next, nil
}

// State returns the current state of a toggle.
func (e *Engine) State(id string) (State, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.toggles[id]
	return s, ok
}

// Counters re-scans the full toggle set. The bucket sum always equals the
// number of registered toggles.
func (e *Engine) Counters() Counters {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var c Counters
	for _, s := range e.toggles {
		switch s {
		case StateRejected:
			c.Rejected++
		case StateActivated:
			c.Activated++
		default:
			c.NotExamined++
		}
	}
	return c
}

// SetFilter restricts visibility to toggles in the given state; nil shows
// all. Filtering is purely a display predicate and never touches state or
// counters.
func (e *Engine) SetFilter(state *State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = state
}

// Filter returns the current filter, nil when all toggles are visible.
func (e *Engine) Filter() *State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter
}

// Visible reports whether a toggle passes the current filter. Unknown ids
// are never visible.
func (e *Engine) Visible(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.toggles[id]
	if !ok {
		return false
	}
	return e.filter == nil || *e.filter == s
}

// IDs returns all toggle ids in registration order.
func (e *Engine) IDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Size returns the number of registered toggles.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.toggles)
}
