package domain

import "time"

// Ticket is the aggregate for trackable work items. Department and
// State are foreign-key relations; the nested records are populated
// only when a query asks for them.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	Observations *string
	CreatedBy    int64
	UpdatedBy    int64
	DepartmentID int64
	StateID      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Department *Department
	State      *State
}
