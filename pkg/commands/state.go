package commands

// State is the lifecycle position of a command.
type State int32

const (
	StateCreated State = iota
	StateFetched
	StateValidated
	StateCommitted
	StateRejected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateFetched:
		return "fetched"
	case StateValidated:
		return "validated"
	case StateCommitted:
		return "committed"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRejected || s == StateFailed
}
