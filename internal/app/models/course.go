package models

import "time"

// Course represents an entry of the course catalog
type Course struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Title       string    `json:"title" db:"title" example:"Distributed Systems"`
	Description string    `json:"description,omitempty" db:"description" example:"Consensus, replication and failure detection"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
