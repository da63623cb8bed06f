// Package presence tracks each room's self-reported occupancy. The
// stored raw value per room is deliberately loose, mirroring what
// clients have historically written: a millisecond timestamp means
// home (and since when), an explicit false means away, and the "N/A"
// sentinel or anything unrecognizable means unknown.
package presence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/NoamFav/Laundry/internal/directory"
	"github.com/NoamFav/Laundry/internal/session"
	"github.com/NoamFav/Laundry/internal/store"
)

// ErrNotYourRoom is returned when a session tries to toggle a room it
// does not own.
var ErrNotYourRoom = errors.New("presence: not your room")

// Status is a room's classified occupancy.
type Status string

const (
	StatusHome    Status = "home"
	StatusAway    Status = "away"
	StatusUnknown Status = "unknown"
)

const sentinelNA = "N/A"

const basePath = "presence"

// Entry is one room's classified state plus, when home, the moment
// presence began.
type Entry struct {
	RoomID string `json:"roomId"`
	Status Status `json:"status"`
	Since  *int64 `json:"since,omitempty"` // ms epoch, home only
}

// Service mediates all presence reads and writes.
type Service struct {
	store store.Store
	dir   *directory.Directory
	now   func() time.Time
}

// NewService creates a presence service.
func NewService(s store.Store, dir *directory.Directory) *Service {
	return &Service{store: s, dir: dir, now: time.Now}
}

// Classify maps a stored raw value onto the three-state model.
func Classify(raw json.RawMessage) (Status, *int64) {
	if len(raw) == 0 {
		return StatusUnknown, nil
	}

	var ts int64
	if err := json.Unmarshal(raw, &ts); err == nil {
		if ts > 0 {
			return StatusHome, &ts
		}
		return StatusUnknown, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return StatusHome, nil
		}
		return StatusAway, nil
	}

	// Strings (including the "N/A" sentinel), nulls, and anything
	// malformed all classify as unknown. Fail closed.
	return StatusUnknown, nil
}

// Toggle advances roomID through the cycle unknown -> home -> away ->
// unknown. Only the owning session may toggle its room.
func (s *Service) Toggle(ctx context.Context, ident session.Identity, roomID string) (Entry, error) {
	if ident.RoomID != roomID {
		return Entry{}, ErrNotYourRoom
	}

	entry := Entry{RoomID: roomID}
	err := s.store.Update(ctx, basePath+"/"+roomID, func(current json.RawMessage) (any, error) {
		status, _ := Classify(current)
		switch status {
		case StatusUnknown:
			since := s.now().UnixMilli()
			entry.Status = StatusHome
			entry.Since = &since
			return since, nil
		case StatusHome:
			entry.Status = StatusAway
			return false, nil
		default:
			entry.Status = StatusUnknown
			return sentinelNA, nil
		}
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// StatusOf classifies one room's stored value.
func (s *Service) StatusOf(ctx context.Context, roomID string) (Entry, error) {
	raw, err := s.store.Read(ctx, basePath+"/"+roomID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Entry{}, err
	}
	status, since := Classify(raw)
	return Entry{RoomID: roomID, Status: status, Since: since}, nil
}

// Snapshot classifies every room in roster order.
func (s *Service) Snapshot(ctx context.Context) ([]Entry, error) {
	tree, err := s.store.ReadTree(ctx, basePath)
	if err != nil {
		return nil, err
	}

	ids := s.dir.AllRoomIDsOrdered()
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		status, since := Classify(tree[basePath+"/"+id])
		entries = append(entries, Entry{RoomID: id, Status: status, Since: since})
	}
	return entries, nil
}
