// Package rotation computes whose turn comes next in a fixed, ordered
// roster of rooms. Every rotating chore (kitchen duty, shower cleaning,
// toilet-paper restocking) shares this one successor function.
package rotation

// Next returns the room that follows current in the ordered member list.
//
// An empty list yields "" (nobody can be on duty). If current is not a
// member of the list, the rotation restarts at the first member; this
// keeps a group functional after its roster is reconfigured while a
// removed room still holds the turn.
func Next(current string, members []string) string {
	if len(members) == 0 {
		return ""
	}
	idx := -1
	for i, m := range members {
		if m == current {
			idx = i
			break
		}
	}
	return members[(idx+1)%len(members)]
}
