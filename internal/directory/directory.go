// Package directory holds the static configuration of the house: the
// room roster with access codes, the facility groups that share a
// rotating chore, and the appliance program catalogs. Everything here
// is immutable after construction.
package directory

import (
	"sort"
	"strconv"
	"strings"
)

// Room is a resident unit. The access code is an opaque secret used
// only at login and is never serialized into API responses.
type Room struct {
	ID          string `json:"id" yaml:"-"`
	Floor       int    `json:"floor" yaml:"floor"`
	Code        string `json:"-" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName" yaml:"displayName"`
}

// FacilityGroup is a fixed roster of rooms sharing one rotating chore.
// AssignedRooms is ordered; the order defines the rotation.
type FacilityGroup struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Floor         int      `json:"floor,omitempty"`
	AssignedRooms []string `json:"assignedRooms"`
	Tasks         []string `json:"tasks,omitempty"`
}

// Program is one appliance cycle from the static catalog.
type Program struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"` // minutes
}

// KitchenTasks are the task kinds rotated within each kitchen group.
var KitchenTasks = []string{"trash", "cupboard", "stove"}

// Directory is the assembled lookup structure. Construct with New or
// Default; do not mutate afterwards.
type Directory struct {
	rooms      map[string]Room
	orderedIDs []string
	kitchens   map[string]FacilityGroup
	showers    map[string]FacilityGroup
	toilets    map[string]FacilityGroup
	laundry    FacilityGroup
	washer     []Program
	dryer      []Program
}

// HouseConfig is the YAML shape for overriding the built-in roster.
// An empty Rooms map keeps the defaults.
type HouseConfig struct {
	Rooms map[string]Room `yaml:"rooms"`
}

// Default builds the directory from the built-in 14-room house.
func Default() *Directory {
	return New(HouseConfig{})
}

// New builds a directory from cfg, falling back to the built-in roster
// when cfg.Rooms is empty. Facility groups are derived from floors:
// floors 1-2 share the lower kitchen and shower, floors 3-4 the upper
// ones, each floor has its own toilet, and the laundry room on the
// ground floor is shared by everyone.
func New(cfg HouseConfig) *Directory {
	rooms := cfg.Rooms
	if len(rooms) == 0 {
		rooms = defaultRooms
	}

	d := &Directory{
		rooms:    make(map[string]Room, len(rooms)),
		kitchens: make(map[string]FacilityGroup, 2),
		showers:  make(map[string]FacilityGroup, 2),
		toilets:  make(map[string]FacilityGroup, 5),
		washer:   washerPrograms,
		dryer:    dryerPrograms,
	}

	for id, r := range rooms {
		r.ID = id
		if r.DisplayName == "" {
			r.DisplayName = id + " - " + r.Name
		}
		d.rooms[id] = r
	}
	d.orderedIDs = orderRoomIDs(d.rooms)

	lower := d.roomsOnFloors(1, 2)
	upper := d.roomsOnFloors(3, 4)

	d.kitchens["lower"] = FacilityGroup{
		ID: "lower", Name: "Lower Kitchen (Floors 1-2)",
		AssignedRooms: lower, Tasks: KitchenTasks,
	}
	d.kitchens["upper"] = FacilityGroup{
		ID: "upper", Name: "Upper Kitchen (Floors 3-4)",
		AssignedRooms: upper, Tasks: KitchenTasks,
	}
	d.showers["lower"] = FacilityGroup{
		ID: "lower", Name: "Lower Shower (Floors 1-2)", AssignedRooms: lower,
	}
	d.showers["upper"] = FacilityGroup{
		ID: "upper", Name: "Upper Shower (Floors 3-4)", AssignedRooms: upper,
	}

	for floor := 0; floor <= 4; floor++ {
		id := "floor" + strconv.Itoa(floor)
		name := "Floor " + strconv.Itoa(floor) + " Toilet"
		if floor == 0 {
			// Shared toilet next to the laundry room; no assigned rota.
			name = "Ground Floor Toilet"
		}
		d.toilets[id] = FacilityGroup{
			ID: id, Name: name, Floor: floor,
			AssignedRooms: d.roomsOnFloors(floor),
		}
	}

	d.laundry = FacilityGroup{
		ID: "laundry", Name: "Laundry Room (Ground Floor)",
		AssignedRooms: d.orderedIDs,
	}
	return d
}

// LookupByCode resolves a login code to its room. Codes are matched
// after trimming and upper-casing the input.
func (d *Directory) LookupByCode(code string) (Room, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, r := range d.rooms {
		if r.Code == code {
			return r, true
		}
	}
	return Room{}, false
}

// LookupByID returns the room with the given identifier.
func (d *Directory) LookupByID(roomID string) (Room, bool) {
	r, ok := d.rooms[roomID]
	return r, ok
}

// AllRoomIDsOrdered returns every room identifier, ascending by the
// leading integer of the identifier.
func (d *Directory) AllRoomIDsOrdered() []string {
	out := make([]string, len(d.orderedIDs))
	copy(out, d.orderedIDs)
	return out
}

// Rooms returns all rooms in roster order.
func (d *Directory) Rooms() []Room {
	out := make([]Room, 0, len(d.orderedIDs))
	for _, id := range d.orderedIDs {
		out = append(out, d.rooms[id])
	}
	return out
}

// Kitchen returns the kitchen group with the given id.
func (d *Directory) Kitchen(id string) (FacilityGroup, bool) {
	g, ok := d.kitchens[id]
	return g, ok
}

// Shower returns the shower group with the given id.
func (d *Directory) Shower(id string) (FacilityGroup, bool) {
	g, ok := d.showers[id]
	return g, ok
}

// Toilet returns the toilet group with the given id.
func (d *Directory) Toilet(id string) (FacilityGroup, bool) {
	g, ok := d.toilets[id]
	return g, ok
}

// Kitchens lists kitchen group ids in stable order.
func (d *Directory) Kitchens() []string { return sortedKeys(d.kitchens) }

// Showers lists shower group ids in stable order.
func (d *Directory) Showers() []string { return sortedKeys(d.showers) }

// Toilets lists toilet group ids in stable order.
func (d *Directory) Toilets() []string { return sortedKeys(d.toilets) }

// Laundry returns the laundry group spanning all rooms.
func (d *Directory) Laundry() FacilityGroup { return d.laundry }

// WasherPrograms returns the washing machine program catalog.
func (d *Directory) WasherPrograms() []Program { return d.washer }

// DryerPrograms returns the dryer program catalog.
func (d *Directory) DryerPrograms() []Program { return d.dryer }

// ProgramByID looks a program up in the given catalog.
func ProgramByID(catalog []Program, id string) (Program, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Program{}, false
}

func (d *Directory) roomsOnFloors(floors ...int) []string {
	var out []string
	for _, id := range d.orderedIDs {
		for _, f := range floors {
			if d.rooms[id].Floor == f {
				out = append(out, id)
				break
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func orderRoomIDs(rooms map[string]Room) []string {
	ids := make([]string, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := leadingInt(ids[i]), leadingInt(ids[j])
		if a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

func sortedKeys(m map[string]FacilityGroup) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
