// Package history keeps the append-only activity log: machine cycles
// and chore completions. Logging is best-effort; a failed insert never
// fails the action that triggered it.
package history

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NoamFav/Laundry/internal/model"
)

// Recorder appends events to the database. A nil db disables recording
// entirely, which the in-memory development mode relies on.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a recorder over db; db may be nil.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Laundry records one appliance event (started, finished, stopped,
// promoted).
func (r *Recorder) Laundry(ctx context.Context, appliance, action, roomID, programID string) {
	if r == nil || r.db == nil {
		return
	}
	event := model.LaundryEvent{
		ID:        uuid.NewString(),
		Appliance: appliance,
		Action:    action,
		RoomID:    roomID,
		ProgramID: programID,
	}
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		log.Printf("history: failed to record laundry event %s/%s: %v", appliance, action, err)
	}
}

// Task records one chore event (completed, paper status change).
func (r *Recorder) Task(ctx context.Context, facility, kind, roomID, detail string) {
	if r == nil || r.db == nil {
		return
	}
	event := model.TaskEvent{
		ID:       uuid.NewString(),
		Facility: facility,
		Kind:     kind,
		RoomID:   roomID,
		Detail:   detail,
	}
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		log.Printf("history: failed to record task event %s/%s: %v", facility, kind, err)
	}
}

// RecentLaundry returns the newest laundry events, newest first.
func (r *Recorder) RecentLaundry(ctx context.Context, limit int) ([]model.LaundryEvent, error) {
	events := []model.LaundryEvent{}
	if r == nil || r.db == nil {
		return events, nil
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// RecentTasks returns the newest task events, newest first.
func (r *Recorder) RecentTasks(ctx context.Context, limit int) ([]model.TaskEvent, error) {
	events := []model.TaskEvent{}
	if r == nil || r.db == nil {
		return events, nil
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
