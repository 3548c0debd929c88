package domain

import "time"

// User represents an authenticated account. Identity fields come from the
// Google sign-in flow; billing state lives on the profile row (Entitlement).
type User struct {
	ID        string
	GoogleSub string
	Email     string
	Name      string
	Picture   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
