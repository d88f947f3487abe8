package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"whooded/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// StaleRoomTimeout is how long an empty room may linger before the
	// cleanup loop reaps it. Empty rooms are normally destroyed on the
	// last leave; this is a backstop.
	StaleRoomTimeout = 2 * time.Hour
)

// roomCodeChars is the base-36 alphabet room codes are generated from
const roomCodeChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RoomRegistry creates, looks up and destroys game sessions by room code,
// and maps connection identifiers to their current room. It is the only
// structure shared across rooms; everything behind it is per-room.
type RoomRegistry struct {
	sessions map[string]*GameSession // room code -> session
	members  map[string]string       // connection id -> room code
	mu       sync.RWMutex

	settings       domain.Settings
	roomCodeLength int
	logger         *slog.Logger
	done           chan struct{}
}

// NewRoomRegistry creates a new registry
func NewRoomRegistry(settings domain.Settings, logger *slog.Logger) *RoomRegistry {
	codeLength := settings.RoomCodeLength
	if codeLength <= 0 {
		codeLength = DefaultRoomCodeLength
	}

	registry := &RoomRegistry{
		sessions:       make(map[string]*GameSession),
		members:        make(map[string]string),
		settings:       settings,
		roomCodeLength: codeLength,
		logger:         logger,
		done:           make(chan struct{}),
	}

	go registry.cleanupLoop()

	return registry
}

// CreateRoom creates a room with the given player as host and sole member
func (r *RoomRegistry) CreateRoom(hostID, nickname string) (*GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for attempts := 0; attempts < 10; attempts++ {
		code = r.generateRoomCode()
		if _, exists := r.sessions[code]; !exists {
			break
		}
	}
	if _, exists := r.sessions[code]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	room := domain.NewRoom(code, r.settings)
	if _, err := room.AddPlayer(hostID, nickname); err != nil {
		return nil, err
	}

	session := NewGameSession(room, r.logger)
	r.sessions[code] = session
	r.members[hostID] = code

	r.logger.Info("room created", "roomCode", code, "hostID", hostID)

	return session, nil
}

// JoinRoom adds a player to an existing room. The code is uppercased before
// lookup.
func (r *RoomRegistry) JoinRoom(code, playerID, nickname string) (*GameSession, error) {
	code = strings.ToUpper(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	if _, err := session.AddPlayer(playerID, nickname); err != nil {
		return nil, err
	}
	r.members[playerID] = code

	r.logger.Info("player joined", "roomCode", code, "playerID", playerID)

	return session, nil
}

// Leave removes a player from their current room, if any. The room is
// destroyed when its last player leaves. Calling Leave for an unmapped id
// is a no-op.
func (r *RoomRegistry) Leave(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.members[playerID]
	if !ok {
		return
	}
	delete(r.members, playerID)

	session, ok := r.sessions[code]
	if !ok {
		return
	}

	session.UnregisterClient(playerID)
	if session.RemovePlayer(playerID) == 0 {
		session.Close()
		delete(r.sessions, code)
		r.logger.Info("room destroyed", "roomCode", code)
	}
}

// SessionFor resolves a player's current room
func (r *RoomRegistry) SessionFor(playerID string) (*GameSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.members[playerID]
	if !ok {
		return nil, false
	}
	session, ok := r.sessions[code]
	return session, ok
}

// RoomCount returns the number of active rooms
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// PlayerCount returns the number of players across all rooms
func (r *RoomRegistry) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Close shuts down the registry and all sessions
func (r *RoomRegistry) Close() {
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		session.Close()
	}
	r.sessions = make(map[string]*GameSession)
	r.members = make(map[string]string)
}

// generateRoomCode generates a random room code. Caller must hold the lock
// so the uniqueness check stays atomic with the insert.
func (r *RoomRegistry) generateRoomCode() string {
	b := make([]byte, r.roomCodeLength)
	rand.Read(b)

	code := make([]byte, r.roomCodeLength)
	for i := range code {
		code[i] = roomCodeChars[int(b[i])%len(roomCodeChars)]
	}

	return string(code)
}

// cleanupLoop periodically reaps stale empty rooms
func (r *RoomRegistry) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.cleanupStaleRooms()
		}
	}
}

func (r *RoomRegistry) cleanupStaleRooms() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for code, session := range r.sessions {
		if session.PlayerCount() == 0 && now.Sub(session.CreatedAt()) > StaleRoomTimeout {
			session.Close()
			delete(r.sessions, code)
			r.logger.Info("stale room cleaned up", "roomCode", code)
		}
	}
}
