package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPresence serves every room's classified occupancy.
func (h *Handler) GetPresence(c *gin.Context) {
	entries, err := h.deps.Presence.Snapshot(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presence": entries})
}

// TogglePresence advances the caller's own room through the presence
// cycle. The room is taken from the session, never from the request.
func (h *Handler) TogglePresence(c *gin.Context) {
	ident := identity(c)
	entry, err := h.deps.Presence.Toggle(c.Request.Context(), ident, ident.RoomID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
