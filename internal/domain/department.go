package domain

// Department scopes both users and tickets for visibility purposes.
// Departments are reference data: created by seeding, never mutated
// through the API.
type Department struct {
	ID    int64
	Title string
}
