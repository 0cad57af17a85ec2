package models

import (
	"time"
)

// Identity defines a login account based on the 'identities' table
type Identity struct {
	ID           int64     `json:"id" db:"id" example:"1"`                                  // Unique identifier for the identity
	Username     string    `json:"username" db:"username" example:"alice"`                  // Unique, case-sensitive login name
	PasswordHash string    `json:"-" db:"password_hash"`                                    // bcrypt digest (excluded from JSON)
	Role         RoleType  `json:"role" db:"role" example:"STUDENT"`                        // ADMIN or STUDENT
	CreatedAt    time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the identity was created
}

// Clone returns a copy safe to hand out of a store
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
