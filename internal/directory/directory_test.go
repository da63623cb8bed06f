package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByCode(t *testing.T) {
	d := Default()

	testCases := []struct {
		name       string
		code       string
		expectID   string
		expectFail bool
	}{
		{name: "exact match", code: "ALPHA-1001", expectID: "1C"},
		{name: "lower case", code: "mu-3005", expectID: "12C"},
		{name: "surrounding whitespace", code: "  theta-3001 ", expectID: "8C"},
		{name: "unknown code", code: "OMEGA-9999", expectFail: true},
		{name: "empty code", code: "", expectFail: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			room, ok := d.LookupByCode(tc.code)
			if tc.expectFail {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tc.expectID, room.ID)
		})
	}
}

func TestLookupByID(t *testing.T) {
	d := Default()

	room, ok := d.LookupByID("12C")
	require.True(t, ok)
	assert.Equal(t, 3, room.Floor)
	assert.Equal(t, "Noam", room.Name)
	assert.Equal(t, "12C - Noam", room.DisplayName)

	_, ok = d.LookupByID("99C")
	assert.False(t, ok)
}

func TestAllRoomIDsOrdered(t *testing.T) {
	d := Default()

	// Numeric ordering, not lexical: 2C before 10C.
	assert.Equal(t, []string{
		"1C", "2C", "3C", "4C", "5C", "6C", "7C",
		"8C", "9C", "10C", "11C", "12C", "13C", "14C",
	}, d.AllRoomIDsOrdered())
}

func TestFacilityGroups(t *testing.T) {
	d := Default()

	lowerKitchen, ok := d.Kitchen("lower")
	require.True(t, ok)
	assert.Equal(t, []string{"1C", "2C", "3C", "4C", "5C", "6C", "7C"}, lowerKitchen.AssignedRooms)
	assert.Equal(t, []string{"trash", "cupboard", "stove"}, lowerKitchen.Tasks)

	upperShower, ok := d.Shower("upper")
	require.True(t, ok)
	assert.Equal(t, []string{"8C", "9C", "10C", "11C", "12C", "13C", "14C"}, upperShower.AssignedRooms)

	groundToilet, ok := d.Toilet("floor0")
	require.True(t, ok)
	assert.Empty(t, groundToilet.AssignedRooms)

	floor2Toilet, ok := d.Toilet("floor2")
	require.True(t, ok)
	assert.Equal(t, []string{"3C", "4C", "5C", "6C", "7C"}, floor2Toilet.AssignedRooms)

	assert.Equal(t, []string{"floor0", "floor1", "floor2", "floor3", "floor4"}, d.Toilets())

	assert.Len(t, d.Laundry().AssignedRooms, 14)
}

func TestProgramCatalogs(t *testing.T) {
	d := Default()

	assert.Len(t, d.WasherPrograms(), 5)
	assert.Len(t, d.DryerPrograms(), 5)

	eco, ok := ProgramByID(d.WasherPrograms(), "eco")
	require.True(t, ok)
	assert.Equal(t, "Eco Mode", eco.Name)
	assert.Equal(t, 120, eco.Duration)

	air, ok := ProgramByID(d.DryerPrograms(), "air")
	require.True(t, ok)
	assert.Equal(t, 20, air.Duration)

	_, ok = ProgramByID(d.WasherPrograms(), "boil")
	assert.False(t, ok)
}

func TestConfiguredRoster(t *testing.T) {
	d := New(HouseConfig{Rooms: map[string]Room{
		"1A": {Floor: 1, Code: "ONE", Name: "Ada"},
		"2A": {Floor: 3, Code: "TWO", Name: "Lin"},
	}})

	assert.Equal(t, []string{"1A", "2A"}, d.AllRoomIDsOrdered())

	lower, _ := d.Kitchen("lower")
	assert.Equal(t, []string{"1A"}, lower.AssignedRooms)
	upper, _ := d.Kitchen("upper")
	assert.Equal(t, []string{"2A"}, upper.AssignedRooms)

	room, ok := d.LookupByCode("two")
	require.True(t, ok)
	assert.Equal(t, "2A - Lin", room.DisplayName)
}
