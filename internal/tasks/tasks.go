// Package tasks implements the rotating chore model: per-facility
// current-turn pointers advanced through the rotation engine on
// completion, plus the toilet-paper variant that only rotates when a
// roll is restocked.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/NoamFav/Laundry/internal/directory"
	"github.com/NoamFav/Laundry/internal/history"
	"github.com/NoamFav/Laundry/internal/rotation"
	"github.com/NoamFav/Laundry/internal/session"
	"github.com/NoamFav/Laundry/internal/store"
)

var (
	// ErrUnknownFacility means no facility group has the given id.
	ErrUnknownFacility = errors.New("tasks: unknown facility")

	// ErrUnknownTaskKind means the kitchen group has no such task.
	ErrUnknownTaskKind = errors.New("tasks: unknown task kind")

	// ErrNotYourTurn means the caller is not the current holder.
	ErrNotYourTurn = errors.New("tasks: not your turn")

	// ErrBadPaperStatus means the paper status is not full/low/empty.
	ErrBadPaperStatus = errors.New("tasks: invalid paper status")
)

// State is one rotating chore's record: who owes it now and when it
// was last done. Timestamps are millisecond epochs.
type State struct {
	CurrentRoom   string `json:"currentRoom,omitempty"`
	LastCompleted *int64 `json:"lastCompleted,omitempty"`
	NextDue       *int64 `json:"nextDue,omitempty"`
}

// ShowerState mirrors State; showers historically stamp lastCleaned.
type ShowerState struct {
	CurrentRoom string `json:"currentRoom,omitempty"`
	LastCleaned *int64 `json:"lastCleaned,omitempty"`
	NextDue     *int64 `json:"nextDue,omitempty"`
}

// PaperStatus is the toilet-paper tri-state.
type PaperStatus string

const (
	PaperFull  PaperStatus = "full"
	PaperLow   PaperStatus = "low"
	PaperEmpty PaperStatus = "empty"
)

// ToiletState tracks paper supply alongside the restocking rota.
type ToiletState struct {
	PaperStatus PaperStatus `json:"paperStatus"`
	LastChecked *int64      `json:"lastChecked,omitempty"`
	CurrentRoom string      `json:"currentRoom,omitempty"`
}

// Snapshot is the full chore tree as served to clients.
type Snapshot struct {
	Kitchens map[string]map[string]State `json:"kitchens"`
	Showers  map[string]ShowerState      `json:"showers"`
	Toilets  map[string]ToiletState      `json:"toilets"`
}

// A completed chore comes due again a week later.
const dueInterval = 7 * 24 * time.Hour

// Service mediates all chore state mutations. Completion is gated to
// the room currently holding the turn; the guard lives here rather
// than in the UI so the model is safe to call from any context.
type Service struct {
	store store.Store
	dir   *directory.Directory
	hist  *history.Recorder
	now   func() time.Time
}

// NewService creates a task service. hist may be nil.
func NewService(s store.Store, dir *directory.Directory, hist *history.Recorder) *Service {
	return &Service{store: s, dir: dir, hist: hist, now: time.Now}
}

// CompleteKitchenTask marks one kitchen chore done, stamps the
// completion, and hands the turn to the next room in the rota.
func (s *Service) CompleteKitchenTask(ctx context.Context, ident session.Identity, kitchenID, kind string) (State, error) {
	group, ok := s.dir.Kitchen(kitchenID)
	if !ok {
		return State{}, ErrUnknownFacility
	}
	if !contains(group.Tasks, kind) {
		return State{}, ErrUnknownTaskKind
	}

	path := "tasks/kitchens/" + kitchenID + "/" + kind
	var updated State
	err := s.store.Update(ctx, path, func(current json.RawMessage) (any, error) {
		state := decodeState(current, group)
		if state.CurrentRoom != "" && state.CurrentRoom != ident.RoomID {
			return nil, ErrNotYourTurn
		}
		now := s.now().UnixMilli()
		due := now + dueInterval.Milliseconds()
		updated = State{
			CurrentRoom:   rotation.Next(state.CurrentRoom, group.AssignedRooms),
			LastCompleted: &now,
			NextDue:       &due,
		}
		return updated, nil
	})
	if err != nil {
		return State{}, err
	}

	s.hist.Task(ctx, "kitchens/"+kitchenID, kind, ident.RoomID, "completed")
	return updated, nil
}

// CompleteShower marks a shower cleaned and rotates the turn.
func (s *Service) CompleteShower(ctx context.Context, ident session.Identity, showerID string) (ShowerState, error) {
	group, ok := s.dir.Shower(showerID)
	if !ok {
		return ShowerState{}, ErrUnknownFacility
	}

	path := "tasks/showers/" + showerID
	var updated ShowerState
	err := s.store.Update(ctx, path, func(current json.RawMessage) (any, error) {
		state := decodeShower(current, group)
		if state.CurrentRoom != "" && state.CurrentRoom != ident.RoomID {
			return nil, ErrNotYourTurn
		}
		now := s.now().UnixMilli()
		due := now + dueInterval.Milliseconds()
		updated = ShowerState{
			CurrentRoom: rotation.Next(state.CurrentRoom, group.AssignedRooms),
			LastCleaned: &now,
			NextDue:     &due,
		}
		return updated, nil
	})
	if err != nil {
		return ShowerState{}, err
	}

	s.hist.Task(ctx, "showers/"+showerID, "clean", ident.RoomID, "completed")
	return updated, nil
}

// SetPaperStatus reports a toilet's paper supply. A transition to full
// is a restock and hands the rota to the next room; low and empty are
// observations anyone can make without moving the turn. Restocking is
// likewise open to every resident, since whoever fetched the roll did
// the work.
func (s *Service) SetPaperStatus(ctx context.Context, ident session.Identity, toiletID string, status PaperStatus) (ToiletState, error) {
	group, ok := s.dir.Toilet(toiletID)
	if !ok {
		return ToiletState{}, ErrUnknownFacility
	}
	switch status {
	case PaperFull, PaperLow, PaperEmpty:
	default:
		return ToiletState{}, ErrBadPaperStatus
	}

	path := "tasks/toilets/" + toiletID
	var updated ToiletState
	err := s.store.Update(ctx, path, func(current json.RawMessage) (any, error) {
		state := decodeToilet(current, group)

		next := state.CurrentRoom
		if status == PaperFull && state.CurrentRoom != "" && len(group.AssignedRooms) > 0 {
			next = rotation.Next(state.CurrentRoom, group.AssignedRooms)
		}
		now := s.now().UnixMilli()
		updated = ToiletState{
			PaperStatus: status,
			LastChecked: &now,
			CurrentRoom: next,
		}
		return updated, nil
	})
	if err != nil {
		return ToiletState{}, err
	}

	s.hist.Task(ctx, "toilets/"+toiletID, "paper", ident.RoomID, string(status))
	return updated, nil
}

// Snapshot assembles the full chore tree, substituting seeded defaults
// for anything unwritten or unreadable.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	tree, err := s.store.ReadTree(ctx, "tasks")
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Kitchens: make(map[string]map[string]State),
		Showers:  make(map[string]ShowerState),
		Toilets:  make(map[string]ToiletState),
	}
	for _, id := range s.dir.Kitchens() {
		group, _ := s.dir.Kitchen(id)
		kinds := make(map[string]State, len(group.Tasks))
		for _, kind := range group.Tasks {
			kinds[kind] = decodeState(tree["tasks/kitchens/"+id+"/"+kind], group)
		}
		snap.Kitchens[id] = kinds
	}
	for _, id := range s.dir.Showers() {
		group, _ := s.dir.Shower(id)
		snap.Showers[id] = decodeShower(tree["tasks/showers/"+id], group)
	}
	for _, id := range s.dir.Toilets() {
		group, _ := s.dir.Toilet(id)
		snap.Toilets[id] = decodeToilet(tree["tasks/toilets/"+id], group)
	}
	return snap, nil
}

// OwedBy lists the facility labels whose turn currently belongs to the
// given room.
func (s *Service) OwedBy(ctx context.Context, roomID string) ([]string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	owed := []string{}
	for _, kid := range s.dir.Kitchens() {
		for _, kind := range directory.KitchenTasks {
			if snap.Kitchens[kid][kind].CurrentRoom == roomID {
				owed = append(owed, "kitchens/"+kid+"/"+kind)
			}
		}
	}
	for _, sid := range s.dir.Showers() {
		if snap.Showers[sid].CurrentRoom == roomID {
			owed = append(owed, "showers/"+sid)
		}
	}
	for _, tid := range s.dir.Toilets() {
		if snap.Toilets[tid].CurrentRoom == roomID {
			owed = append(owed, "toilets/"+tid)
		}
	}
	return owed, nil
}

// Defaults: the first roster member holds the turn until the record is
// first written; malformed records decode the same way (fail closed).

func seedRoom(group directory.FacilityGroup) string {
	if len(group.AssignedRooms) == 0 {
		return ""
	}
	return group.AssignedRooms[0]
}

func decodeState(raw json.RawMessage, group directory.FacilityGroup) State {
	var state State
	if len(raw) == 0 || json.Unmarshal(raw, &state) != nil || state.CurrentRoom == "" {
		return State{CurrentRoom: seedRoom(group)}
	}
	return state
}

func decodeShower(raw json.RawMessage, group directory.FacilityGroup) ShowerState {
	var state ShowerState
	if len(raw) == 0 || json.Unmarshal(raw, &state) != nil || state.CurrentRoom == "" {
		return ShowerState{CurrentRoom: seedRoom(group)}
	}
	return state
}

func decodeToilet(raw json.RawMessage, group directory.FacilityGroup) ToiletState {
	var state ToiletState
	if len(raw) == 0 || json.Unmarshal(raw, &state) != nil {
		return ToiletState{PaperStatus: PaperFull, CurrentRoom: seedRoom(group)}
	}
	switch state.PaperStatus {
	case PaperFull, PaperLow, PaperEmpty:
	default:
		state.PaperStatus = PaperFull
	}
	return state
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
