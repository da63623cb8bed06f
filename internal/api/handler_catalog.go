package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRooms serves the room roster (without access codes) grouped with
// facility assignments.
func (h *Handler) GetRooms(c *gin.Context) {
	dir := h.deps.Directory

	kitchens := gin.H{}
	for _, id := range dir.Kitchens() {
		g, _ := dir.Kitchen(id)
		kitchens[id] = g
	}
	showers := gin.H{}
	for _, id := range dir.Showers() {
		g, _ := dir.Shower(id)
		showers[id] = g
	}
	toilets := gin.H{}
	for _, id := range dir.Toilets() {
		g, _ := dir.Toilet(id)
		toilets[id] = g
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms": dir.Rooms(),
		"facilities": gin.H{
			"kitchens": kitchens,
			"showers":  showers,
			"toilets":  toilets,
			"laundry":  dir.Laundry(),
		},
	})
}

// GetPrograms serves both appliance program catalogs.
func (h *Handler) GetPrograms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"washer": h.deps.Directory.WasherPrograms(),
		"dryer":  h.deps.Directory.DryerPrograms(),
	})
}
