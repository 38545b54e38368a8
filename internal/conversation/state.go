// Package conversation implements the scripted onboarding flow: the conversation states, the
// pure transition function that walks a visitor through name, company, role and use case, and
// the engine that puts the knowledge matcher in front of it.
package conversation

// State is a stage of the scripted onboarding flow.
type State string

const (
	// StateGreeting is the initial state: the visitor has only seen the welcome message.
	StateGreeting State = "greeting"
	// StateCollectingInfo asks for name, company and role in that order.
	StateCollectingInfo State = "collecting_info"
	// StateDiscussingUseCase waits for the visitor's primary use case.
	StateDiscussingUseCase State = "discussing_usecase"
	// StateAnswering is terminal; every further non-topic input gets the engineer hand-off.
	StateAnswering State = "answering"
)

// validTransitions lists forward moves; staying in the current state is always allowed.
var validTransitions = map[State][]State{
	StateGreeting:          {StateCollectingInfo},
	StateCollectingInfo:    {StateDiscussingUseCase},
	StateDiscussingUseCase: {StateAnswering},
	StateAnswering:         {},
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
func IsTransitionAllowed(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	if from == to {
		return true
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
