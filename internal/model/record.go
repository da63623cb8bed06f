package model

import "time"

// Record is one node of the hierarchical key-path store. The value is
// the JSON document most recently written at that path; writes are
// last-writer-wins per path.
type Record struct {
	Path      string    `gorm:"primaryKey;size:255"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
