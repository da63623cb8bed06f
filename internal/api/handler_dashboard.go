package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NoamFav/Laundry/internal/laundry"
	"github.com/NoamFav/Laundry/internal/presence"
)

// GetDashboard aggregates the caller's view of the house: occupancy
// counts, both machines, and the chores currently owed by their room.
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	ident := identity(c)

	entries, err := h.deps.Presence.Snapshot(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	home, away := 0, 0
	for _, e := range entries {
		switch e.Status {
		case presence.StatusHome:
			home++
		case presence.StatusAway:
			away++
		}
	}
	total := len(entries)
	percentHome := 0
	if total > 0 {
		percentHome = home * 100 / total
	}

	washer, err := h.deps.Laundry.State(ctx, laundry.Washer)
	if err != nil {
		abortWithError(c, err)
		return
	}
	dryer, err := h.deps.Laundry.State(ctx, laundry.Dryer)
	if err != nil {
		abortWithError(c, err)
		return
	}

	owed, err := h.deps.Tasks.OwedBy(ctx, ident.RoomID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room": ident,
		"occupancy": gin.H{
			"home":        home,
			"away":        away,
			"unknown":     total - home - away,
			"total":       total,
			"percentHome": percentHome,
		},
		"laundry": gin.H{"washingMachine": washer, "dryer": dryer},
		"yourTurn": owed,
	})
}
