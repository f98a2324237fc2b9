package model

// PropagationState is the state of a submodule in the tag propagator
type PropagationState string

const (
	StatePending     PropagationState = "pending"
	StateTagsFetched PropagationState = "tags_fetched"
	StateTagDerived  PropagationState = "tag_derived"
	StateCreating    PropagationState = "creating"
	StateCreated     PropagationState = "created"
	StateFailed      PropagationState = "failed"
	StatePlanned     PropagationState = "planned" // dry run, no mutation requested
)

var stateOrder = map[PropagationState]int{
	StatePending:     0,
	StateTagsFetched: 1,
	StateTagDerived:  2,
	StateCreating:    3,
	StateCreated:     4,
	StateFailed:      4,
	StatePlanned:     4,
}

// IsTerminal reports whether no further transition is possible
func (s PropagationState) IsTerminal() bool {
	return s == StateCreated || s == StateFailed || s == StatePlanned
}

// CanTransitionTo reports whether moving from s to next keeps the state machine forward-only.
// Failed is reachable from every non-terminal state.
func (s PropagationState) CanTransitionTo(next PropagationState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	cur, ok := stateOrder[s]
	if !ok {
		return false
	}
	n, ok := stateOrder[next]
	if !ok {
		return false
	}
	switch next {
	case StateCreated:
		return s == StateCreating
	case StatePlanned:
		return s == StateTagDerived
	}
	return n == cur+1
}
