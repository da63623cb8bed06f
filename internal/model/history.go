package model

import "time"

// LaundryEvent is one append-only log entry for a shared appliance:
// a cycle starting, finishing, being stopped early, or a queued
// request being promoted to the active slot.
type LaundryEvent struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Appliance string    `gorm:"size:32;index;not null"`
	Action    string    `gorm:"size:32;not null"`
	RoomID    string    `gorm:"size:8"`
	ProgramID string    `gorm:"size:32"`
	CreatedAt time.Time `gorm:"index;not null"`
}

// TaskEvent is one append-only log entry for a rotating chore:
// a completion or a toilet-paper status change.
type TaskEvent struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Facility  string    `gorm:"size:64;index;not null"`
	Kind      string    `gorm:"size:32;not null"`
	RoomID    string    `gorm:"size:8"`
	Detail    string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"index;not null"`
}
