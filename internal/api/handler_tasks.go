package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NoamFav/Laundry/internal/tasks"
)

// GetTasks serves the full chore tree.
func (h *Handler) GetTasks(c *gin.Context) {
	snap, err := h.deps.Tasks.Snapshot(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// CompleteKitchenTask marks one kitchen chore done for the caller.
func (h *Handler) CompleteKitchenTask(c *gin.Context) {
	state, err := h.deps.Tasks.CompleteKitchenTask(
		c.Request.Context(), identity(c), c.Param("kitchen_id"), c.Param("kind"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CompleteShower marks a shower cleaned by the caller.
func (h *Handler) CompleteShower(c *gin.Context) {
	state, err := h.deps.Tasks.CompleteShower(
		c.Request.Context(), identity(c), c.Param("shower_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type paperRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetPaperStatus reports a toilet's paper supply.
func (h *Handler) SetPaperStatus(c *gin.Context) {
	var req paperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	state, err := h.deps.Tasks.SetPaperStatus(
		c.Request.Context(), identity(c), c.Param("toilet_id"), tasks.PaperStatus(req.Status))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
