package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NoamFav/Laundry/internal/laundry"
)

// GetLaundry serves both appliances' machine records.
func (h *Handler) GetLaundry(c *gin.Context) {
	ctx := c.Request.Context()
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
	c.JSON(http.StatusOK, gin.H{"washingMachine": washer, "dryer": dryer})
}

type machineRequest struct {
	ProgramID string `json:"programId" binding:"required"`
}

// RequestMachine starts the appliance for the caller when idle, or
// joins the queue when it is not.
func (h *Handler) RequestMachine(c *gin.Context) {
	appliance, ok := laundry.ParseAppliance(c.Param("appliance"))
	if !ok {
		abortWithError(c, laundry.ErrUnknownAppliance)
		return
	}
	var req machineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "programId is required"})
		return
	}

	state, err := h.deps.Laundry.Request(c.Request.Context(), identity(c), appliance, req.ProgramID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// StopMachine advances the appliance out of its current phase: running
// becomes done, done clears the machine and promotes the queue.
func (h *Handler) StopMachine(c *gin.Context) {
	appliance, ok := laundry.ParseAppliance(c.Param("appliance"))
	if !ok {
		abortWithError(c, laundry.ErrUnknownAppliance)
		return
	}

	state, err := h.deps.Laundry.Stop(c.Request.Context(), identity(c), appliance)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
