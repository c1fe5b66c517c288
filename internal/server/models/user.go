package models

import "time"

// User is an account created on the first confirmed sign-in for an email.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}
