package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type storeEvent struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// StreamEvents serves live store changes under the requested key path
// as server-sent events. The stream opens with a snapshot of the
// current subtree so clients never miss state written before they
// connected.
func (h *Handler) StreamEvents(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	events := make(chan storeEvent, 64)
	unsub := h.deps.Store.Subscribe(path, func(p string, value json.RawMessage) {
		select {
		case events <- storeEvent{Path: p, Value: value}:
		default:
			// Slow consumer; it will recover from the next event.
		}
	})
	defer unsub()

	tree, err := h.deps.Store.ReadTree(c.Request.Context(), path)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	for p, value := range tree {
		c.SSEvent("change", storeEvent{Path: p, Value: value})
	}
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case ev := <-events:
			c.SSEvent("change", ev)
			return true
		}
	})
}
