// Package laundry implements the shared-appliance state machine:
// idle -> running -> done, with a FIFO queue of pending requests that
// is promoted one entry at a time when a finished cycle is cleared.
package laundry

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/NoamFav/Laundry/internal/directory"
	"github.com/NoamFav/Laundry/internal/history"
	"github.com/NoamFav/Laundry/internal/session"
	"github.com/NoamFav/Laundry/internal/store"
)

var (
	// ErrUnknownAppliance means the appliance name is not washer/dryer.
	ErrUnknownAppliance = errors.New("laundry: unknown appliance")

	// ErrUnknownProgram means the program id is not in the catalog.
	ErrUnknownProgram = errors.New("laundry: unknown program")

	// ErrMachineBusy means an explicit start hit a non-idle machine.
	ErrMachineBusy = errors.New("laundry: machine already in use")

	// ErrNotRunning means stop was called on an idle machine.
	ErrNotRunning = errors.New("laundry: machine is not running")
)

// Appliance names one shared machine.
type Appliance string

const (
	Washer Appliance = "washer"
	Dryer  Appliance = "dryer"
)

// ParseAppliance validates an appliance name from a request path.
func ParseAppliance(s string) (Appliance, bool) {
	switch Appliance(s) {
	case Washer, Dryer:
		return Appliance(s), true
	}
	return "", false
}

// Path is the appliance's key path in the store.
func (a Appliance) Path() string {
	if a == Washer {
		return "laundry/washingMachine"
	}
	return "laundry/dryer"
}

// Label is the appliance's human-readable name.
func (a Appliance) Label() string {
	if a == Washer {
		return "washing machine"
	}
	return "dryer"
}

// Status is the machine's lifecycle phase.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// QueueEntry is one pending request waiting for the machine.
type QueueEntry struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	ProgramID string `json:"programId"`
	Program   string `json:"program"`
	Timestamp int64  `json:"timestamp"` // ms epoch, enqueue time
}

// MachineState is the full record of one appliance. When idle, the
// program, times, and current user are all absent; when running or
// done, all four are present. Timestamps are millisecond epochs.
type MachineState struct {
	Status      Status             `json:"status"`
	Program     *directory.Program `json:"program,omitempty"`
	StartTime   *int64             `json:"startTime,omitempty"`
	EndTime     *int64             `json:"endTime,omitempty"`
	CurrentUser string             `json:"currentUser,omitempty"`
	Queue       []QueueEntry       `json:"queue"`
}

// Scheduler mediates all appliance mutations through the store's
// transactional update, so queue promotion cannot double-start within
// this process. Cross-client races converge through idempotent Finish.
type Scheduler struct {
	store  store.Store
	dir    *directory.Directory
	hist   *history.Recorder
	onDone func(Appliance)
	now    func() time.Time
	newID  func() string
}

// NewScheduler creates a machine scheduler. hist may be nil.
func NewScheduler(s store.Store, dir *directory.Directory, hist *history.Recorder) *Scheduler {
	return &Scheduler{
		store: s,
		dir:   dir,
		hist:  hist,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// OnDone registers a hook fired whenever a cycle reaches done, used to
// push "your laundry is ready" notifications. Must be set before any
// watcher or mutation runs.
func (s *Scheduler) OnDone(fn func(Appliance)) {
	s.onDone = fn
}

// State returns the current machine record, decoding absent or
// malformed store values as idle.
func (s *Scheduler) State(ctx context.Context, a Appliance) (MachineState, error) {
	raw, err := s.store.Read(ctx, a.Path())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return MachineState{}, err
	}
	return decodeMachine(raw), nil
}

// Start begins a cycle on an idle machine. A non-idle machine rejects
// the start; use Request for the start-or-enqueue policy.
func (s *Scheduler) Start(ctx context.Context, ident session.Identity, a Appliance, programID string) (MachineState, error) {
	program, err := s.lookupProgram(a, programID)
	if err != nil {
		return MachineState{}, err
	}

	var updated MachineState
	err = s.store.Update(ctx, a.Path(), func(current json.RawMessage) (any, error) {
		state := decodeMachine(current)
		if state.Status != StatusIdle {
			return nil, ErrMachineBusy
		}
		updated = s.runningState(program, ident.RoomID, state.Queue)
		return updated, nil
	})
	if err != nil {
		return MachineState{}, err
	}

	s.hist.Laundry(ctx, string(a), "started", ident.RoomID, programID)
	return updated, nil
}

// Enqueue appends a request to the machine's FIFO queue.
func (s *Scheduler) Enqueue(ctx context.Context, ident session.Identity, a Appliance, programID string) (MachineState, error) {
	program, err := s.lookupProgram(a, programID)
	if err != nil {
		return MachineState{}, err
	}

	var updated MachineState
	err = s.store.Update(ctx, a.Path(), func(current json.RawMessage) (any, error) {
		state := decodeMachine(current)
		state.Queue = append(state.Queue, QueueEntry{
			ID:        s.newID(),
			RoomID:    ident.RoomID,
			ProgramID: program.ID,
			Program:   program.Name,
			Timestamp: s.now().UnixMilli(),
		})
		updated = state
		return updated, nil
	})
	if err != nil {
		return MachineState{}, err
	}

	s.hist.Laundry(ctx, string(a), "queued", ident.RoomID, programID)
	return updated, nil
}

// Request applies the house policy in one atomic step: start directly
// when the machine is idle, otherwise join the queue.
func (s *Scheduler) Request(ctx context.Context, ident session.Identity, a Appliance, programID string) (MachineState, error) {
	program, err := s.lookupProgram(a, programID)
	if err != nil {
		return MachineState{}, err
	}

	var updated MachineState
	var action string
	err = s.store.Update(ctx, a.Path(), func(current json.RawMessage) (any, error) {
		state := decodeMachine(current)
		if state.Status == StatusIdle {
			action = "started"
			updated = s.runningState(program, ident.RoomID, state.Queue)
			return updated, nil
		}
		action = "queued"
		state.Queue = append(state.Queue, QueueEntry{
			ID:        s.newID(),
			RoomID:    ident.RoomID,
			ProgramID: program.ID,
			Program:   program.Name,
			Timestamp: s.now().UnixMilli(),
		})
		updated = state
		return updated, nil
	})
	if err != nil {
		return MachineState{}, err
	}

	s.hist.Laundry(ctx, string(a), action, ident.RoomID, programID)
	return updated, nil
}

// Stop advances a machine out of its current phase: a running cycle is
// marked done early; a done machine is cleared, promoting the queue
// head to a fresh cycle or falling back to idle.
func (s *Scheduler) Stop(ctx context.Context, ident session.Identity, a Appliance) (MachineState, error) {
	var updated MachineState
	var action string
	var promoted *QueueEntry
	err := s.store.Update(ctx, a.Path(), func(current json.RawMessage) (any, error) {
		state := decodeMachine(current)
		switch state.Status {
		case StatusRunning:
			action = "stopped"
			state.Status = StatusDone
			updated = state
			return updated, nil
		case StatusDone:
			next, rest, ok := s.dequeue(a, state.Queue)
			if !ok {
				action = "cleared"
				updated = idleState()
				return updated, nil
			}
			action = "promoted"
			promoted = &next.entry
			updated = s.runningState(next.program, next.entry.RoomID, rest)
			return updated, nil
		default:
			return nil, ErrNotRunning
		}
	})
	if err != nil {
		return MachineState{}, err
	}

	switch action {
	case "stopped":
		s.hist.Laundry(ctx, string(a), "stopped", ident.RoomID, "")
		s.fireDone(a)
	case "promoted":
		s.hist.Laundry(ctx, string(a), "promoted", promoted.RoomID, promoted.ProgramID)
	case "cleared":
		s.hist.Laundry(ctx, string(a), "cleared", ident.RoomID, "")
	}
	return updated, nil
}

// Finish marks a running cycle done. It is idempotent: expiry may be
// observed by the local watcher and any number of clients at once, and
// every call after the first is a no-op.
func (s *Scheduler) Finish(ctx context.Context, a Appliance) error {
	transitioned := false
	err := s.store.Update(ctx, a.Path(), func(current json.RawMessage) (any, error) {
		state := decodeMachine(current)
		if state.Status != StatusRunning {
			return state, nil
		}
		transitioned = true
		state.Status = StatusDone
		return state, nil
	})
	if err != nil {
		return err
	}

	if transitioned {
		s.hist.Laundry(ctx, string(a), "finished", "", "")
		s.fireDone(a)
	}
	return nil
}

// Watch drives time-based auto-completion for one appliance: it keeps
// a timer aimed at the subscribed record's end time and fires Finish
// when the cycle elapses. Runs until ctx is cancelled.
func (s *Scheduler) Watch(ctx context.Context, a Appliance) {
	updates := make(chan MachineState, 16)
	unsub := s.store.Subscribe(a.Path(), func(_ string, raw json.RawMessage) {
		select {
		case updates <- decodeMachine(raw):
		default:
		}
	})
	defer unsub()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	arm := func(state MachineState) {
		if armed && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		armed = false
		if state.Status == StatusRunning && state.EndTime != nil {
			d := time.UnixMilli(*state.EndTime).Sub(s.now())
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
			armed = true
		}
	}

	if state, err := s.State(ctx, a); err == nil {
		arm(state)
	} else {
		log.Printf("laundry: watcher failed to read %s state: %v", a, err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case state := <-updates:
			arm(state)
		case <-timer.C:
			armed = false
			if err := s.Finish(ctx, a); err != nil {
				log.Printf("laundry: auto-complete of %s failed: %v", a, err)
			}
		}
	}
}

func (s *Scheduler) lookupProgram(a Appliance, programID string) (directory.Program, error) {
	var catalog []directory.Program
	switch a {
	case Washer:
		catalog = s.dir.WasherPrograms()
	case Dryer:
		catalog = s.dir.DryerPrograms()
	default:
		return directory.Program{}, ErrUnknownAppliance
	}
	program, ok := directory.ProgramByID(catalog, programID)
	if !ok {
		return directory.Program{}, ErrUnknownProgram
	}
	return program, nil
}

func (s *Scheduler) runningState(program directory.Program, roomID string, queue []QueueEntry) MachineState {
	start := s.now().UnixMilli()
	end := start + int64(program.Duration)*60_000
	p := program
	if queue == nil {
		queue = []QueueEntry{}
	}
	return MachineState{
		Status:      StatusRunning,
		Program:     &p,
		StartTime:   &start,
		EndTime:     &end,
		CurrentUser: roomID,
		Queue:       queue,
	}
}

type dequeued struct {
	entry   QueueEntry
	program directory.Program
}

// dequeue pops the first queue entry whose program id still exists in
// the catalog; entries with retired program ids are dropped.
func (s *Scheduler) dequeue(a Appliance, queue []QueueEntry) (dequeued, []QueueEntry, bool) {
	for i, entry := range queue {
		program, err := s.lookupProgram(a, entry.ProgramID)
		if err != nil {
			log.Printf("laundry: dropping queue entry %s with unknown program %q", entry.ID, entry.ProgramID)
			continue
		}
		rest := append([]QueueEntry{}, queue[i+1:]...)
		return dequeued{entry: entry, program: program}, rest, true
	}
	return dequeued{}, nil, false
}

func (s *Scheduler) fireDone(a Appliance) {
	if s.onDone != nil {
		s.onDone(a)
	}
}

func idleState() MachineState {
	return MachineState{Status: StatusIdle, Queue: []QueueEntry{}}
}

// decodeMachine validates a stored record, failing closed: malformed
// documents and running/done records missing their required fields all
// decode to idle, and an idle record sheds any stray cycle fields.
func decodeMachine(raw json.RawMessage) MachineState {
	var state MachineState
	if len(raw) == 0 || json.Unmarshal(raw, &state) != nil {
		return idleState()
	}
	if state.Queue == nil {
		state.Queue = []QueueEntry{}
	}
	switch state.Status {
	case StatusRunning, StatusDone:
		if state.Program == nil || state.StartTime == nil || state.EndTime == nil || state.CurrentUser == "" {
			idle := idleState()
			idle.Queue = state.Queue
			return idle
		}
		return state
	case StatusIdle:
		return MachineState{Status: StatusIdle, Queue: state.Queue}
	default:
		return idleState()
	}
}
