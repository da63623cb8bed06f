package directory

// The built-in house: 14 rooms across four residential floors above a
// ground floor holding the laundry room and a shared toilet.
var defaultRooms = map[string]Room{
	// Floor 1
	"1C": {Floor: 1, Code: "ALPHA-1001", Name: "Giorgio"},
	"2C": {Floor: 1, Code: "BETA-1002", Name: "Lesli"},

	// Floor 2
	"3C": {Floor: 2, Code: "GAMMA-2001", Name: "Alin"},
	"4C": {Floor: 2, Code: "DELTA-2002", Name: "Yass"},
	"5C": {Floor: 2, Code: "EPSILON-2003", Name: "Antonios"},
	"6C": {Floor: 2, Code: "ZETA-2004", Name: "Ojas"},
	"7C": {Floor: 2, Code: "ETA-2005", Name: "Anita"},

	// Floor 3
	"8C":  {Floor: 3, Code: "THETA-3001", Name: "Manaia"},
	"9C":  {Floor: 3, Code: "IOTA-3002", Name: "Giuliano"},
	"10C": {Floor: 3, Code: "KAPPA-3003", Name: "Anna"},
	"11C": {Floor: 3, Code: "LAMBDA-3004", Name: "Alan"},
	"12C": {Floor: 3, Code: "MU-3005", Name: "Noam"},

	// Floor 4
	"13C": {Floor: 4, Code: "NU-4001", Name: "Omar"},
	"14C": {Floor: 4, Code: "XI-4002", Name: "Sasa"},
}

var washerPrograms = []Program{
	{ID: "quick", Name: "Quick Wash", Duration: 30},
	{ID: "normal", Name: "Normal", Duration: 60},
	{ID: "heavy", Name: "Heavy Duty", Duration: 90},
	{ID: "delicate", Name: "Delicate", Duration: 45},
	{ID: "eco", Name: "Eco Mode", Duration: 120},
}

var dryerPrograms = []Program{
	{ID: "quick", Name: "Quick Dry", Duration: 30},
	{ID: "normal", Name: "Normal", Duration: 60},
	{ID: "heavy", Name: "Heavy Load", Duration: 90},
	{ID: "delicate", Name: "Delicate", Duration: 40},
	{ID: "air", Name: "Air Dry", Duration: 20},
}
