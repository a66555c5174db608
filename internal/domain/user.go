package domain

import "time"

// User is the domain model for people who create and track tickets.
// Admin is decided at sign-up time only: the first account ever
// registered becomes the administrator, nobody else.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	DepartmentID int64
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
