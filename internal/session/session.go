// Package session resolves per-room login codes to room identities and
// issues the bearer tokens that gate every "is this my room" check in
// the mutation entry points.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/NoamFav/Laundry/internal/directory"
)

var (
	// ErrInvalidCode means the login code matches no room.
	ErrInvalidCode = errors.New("session: invalid room code")

	// ErrInvalidToken means the bearer token failed verification or
	// names a room that no longer exists.
	ErrInvalidToken = errors.New("session: invalid token")
)

// Identity is the authenticated room, as persisted client-side and
// carried through request contexts.
type Identity struct {
	RoomID      string `json:"id"`
	Floor       int    `json:"floor"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Manager authenticates codes against the room directory and signs
// session tokens. The room code itself is the long-lived credential;
// the token only saves re-typing it, so its lifetime is generous.
type Manager struct {
	dir    *directory.Directory
	secret []byte
	ttl    time.Duration
}

// NewManager creates a session manager. A zero ttl defaults to 30 days.
func NewManager(dir *directory.Directory, secret []byte, ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Manager{dir: dir, secret: secret, ttl: ttl}
}

// Authenticate matches a login code (trimmed, case-insensitive) to a
// room and returns the identity with a signed session token.
func (m *Manager) Authenticate(code string) (Identity, string, error) {
	room, ok := m.dir.LookupByCode(code)
	if !ok {
		return Identity{}, "", ErrInvalidCode
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": room.ID,
		"iat": now.Unix(),
		"exp": now.Add(m.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Identity{}, "", fmt.Errorf("sign session token: %w", err)
	}

	return identityFor(room), token, nil
}

// Parse verifies a session token and rebuilds the identity from the
// directory, so renamed rooms pick up current data.
func (m *Manager) Parse(token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	roomID, _ := claims["sub"].(string)
	room, ok := m.dir.LookupByID(roomID)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return identityFor(room), nil
}

func identityFor(room directory.Room) Identity {
	return Identity{
		RoomID:      room.ID,
		Floor:       room.Floor,
		Name:        room.Name,
		DisplayName: room.DisplayName,
	}
}
