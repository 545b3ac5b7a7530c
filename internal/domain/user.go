package domain

import "time"

// User is the domain model for accounts that own and report issues.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
