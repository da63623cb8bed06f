package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 50

func historyLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", ""))
	if err != nil || limit <= 0 || limit > 500 {
		return defaultHistoryLimit
	}
	return limit
}

// GetLaundryHistory serves recent appliance events, newest first.
func (h *Handler) GetLaundryHistory(c *gin.Context) {
	events, err := h.deps.History.RecentLaundry(c.Request.Context(), historyLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetTaskHistory serves recent chore events, newest first.
func (h *Handler) GetTaskHistory(c *gin.Context) {
	events, err := h.deps.History.RecentTasks(c.Request.Context(), historyLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
