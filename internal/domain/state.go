package domain

// StateTitle enumerates the fixed ticket lifecycle stages.
type StateTitle string

const (
	StatePending    StateTitle = "PENDING"
	StateRejected   StateTitle = "REJECTED"
	StateInProgress StateTitle = "IN_PROGRESS"
	StateCompleted  StateTitle = "COMPLETED"
)

// Terminal reports whether a ticket in this state accepts no further
// mutation.
func (t StateTitle) Terminal() bool {
	return t == StateRejected || t == StateCompleted
}

// State is a lifecycle stage record. The four states are seeded once
// and never created or changed by the API.
type State struct {
	ID    int64
	Title StateTitle
}
