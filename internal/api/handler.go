package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NoamFav/Laundry/internal/directory"
	"github.com/NoamFav/Laundry/internal/history"
	"github.com/NoamFav/Laundry/internal/laundry"
	"github.com/NoamFav/Laundry/internal/presence"
	"github.com/NoamFav/Laundry/internal/session"
	"github.com/NoamFav/Laundry/internal/store"
	"github.com/NoamFav/Laundry/internal/tasks"
)

// Deps collects everything the handlers need. DB and WebPush may be
// nil, which disables push subscriptions.
type Deps struct {
	Directory *directory.Directory
	Store     store.Store
	Sessions  *session.Manager
	Presence  *presence.Service
	Tasks     *tasks.Service
	Laundry   *laundry.Scheduler
	History   *history.Recorder
	DB        *gorm.DB
	WebPush   *webpush.Options
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	deps Deps
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

const identityKey = "identity"

// RequireAuth extracts and verifies the bearer token, storing the room
// identity in the request context.
func (h *Handler) RequireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	ident, err := h.deps.Sessions.Parse(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Set(identityKey, ident)
	c.Next()
}

// identity returns the authenticated identity set by RequireAuth.
func identity(c *gin.Context) session.Identity {
	return c.MustGet(identityKey).(session.Identity)
}

// abortWithError maps domain errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInvalidCode), errors.Is(err, session.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, presence.ErrNotYourRoom), errors.Is(err, tasks.ErrNotYourTurn):
		status = http.StatusForbidden
	case errors.Is(err, tasks.ErrUnknownFacility), errors.Is(err, laundry.ErrUnknownAppliance):
		status = http.StatusNotFound
	case errors.Is(err, tasks.ErrUnknownTaskKind), errors.Is(err, tasks.ErrBadPaperStatus),
		errors.Is(err, laundry.ErrUnknownProgram):
		status = http.StatusBadRequest
	case errors.Is(err, laundry.ErrMachineBusy), errors.Is(err, laundry.ErrNotRunning):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
