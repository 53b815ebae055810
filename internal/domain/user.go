package domain

import "time"

// User is an account that owns tasks.
type User struct {
	Username     string
	PasswordHash string
	Email        string
	IsAdmin      bool
	CreatedAt    time.Time
}
