package domain

import "time"

// Profile is the account record behind a session. Role changes happen only
// through admin-privileged actions (staff conversion / access removal).
type Profile struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
