package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Code string `json:"code" binding:"required"`
}

// Login exchanges a room access code for a session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	ident, token, err := h.deps.Sessions.Authenticate(req.Code)
	if err != nil {
		// Deliberately vague: the code is the credential.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid room code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "room": ident})
}

// Logout exists so clients have an explicit end-of-session call; the
// token itself is simply discarded client-side.
func (h *Handler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
