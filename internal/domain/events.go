package domain

import "time"

// EventType represents the type of game event
type EventType string

const (
	EventRoomCreated         EventType = "room_created"
	EventRoomJoined          EventType = "room_joined"
	EventJoinError           EventType = "join_error"
	EventAccusationError     EventType = "accusation_error"
	EventPlayerJoined        EventType = "player_joined"
	EventPlayerLeft          EventType = "player_left"
	EventRoleAssigned        EventType = "role_assigned"
	EventGameStarted         EventType = "game_started"
	EventInvestigationResult EventType = "investigation_result"
	EventNightPhaseStart     EventType = "night_phase_start"
	EventDayPhaseStart       EventType = "day_phase_start"
	EventChatMessage         EventType = "chat_message"
	EventPlayerAccused       EventType = "player_accused"
	EventVotingPhaseStart    EventType = "voting_phase_start"
	EventVotingResult        EventType = "voting_result"
	EventTimerUpdate         EventType = "timer_update"
	EventGameOver            EventType = "game_over"
)

// GameEvent represents an event that occurred in a room. Events with a
// PlayerID are unicast; the rest are room broadcasts.
type GameEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	PlayerID  string      `json:"playerId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new broadcast event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates a new player-specific event
func NewPlayerEvent(eventType EventType, roomCode, playerID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for different events

// RoomStatePayload is sent on room creation/join and on lobby changes
type RoomStatePayload struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerInfo `json:"players"`
}

// ErrorPayload carries a user-facing error message
type ErrorPayload struct {
	Message string `json:"message"`
}

// RoleAssignedPayload is sent privately to each player at game start
type RoleAssignedPayload struct {
	Role  Role  `json:"role"`
	Phase Phase `json:"phase"`
}

// GameStartedPayload is broadcast at game start with the sanitized lineup
type GameStartedPayload struct {
	Phase   Phase        `json:"phase"`
	Players []PlayerInfo `json:"players"`
}

// InvestigationResultPayload is unicast to the investigating police player
type InvestigationResultPayload struct {
	Target   string `json:"target"`
	Role     Role   `json:"role"`
	Nickname string `json:"nickname"`
}

// NightResultPayload describes one night's outcome
type NightResultPayload struct {
	Killed string `json:"killedPlayer,omitempty"`
	Saved  string `json:"savedPlayer,omitempty"`
}

// PhaseStartPayload is broadcast when a day or night phase begins. Dead
// players have their roles revealed in the lineup.
type PhaseStartPayload struct {
	Players     []PlayerInfo        `json:"players"`
	NightResult *NightResultPayload `json:"nightResult,omitempty"`
}

// ChatMessagePayload relays a day-phase chat line
type ChatMessagePayload struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// PlayerAccusedPayload is broadcast when an accusation is accepted
type PlayerAccusedPayload struct {
	Accuser   string `json:"accuser"`
	Accused   string `json:"accused"`
	AccusedID string `json:"accusedId"`
}

// VotingPhaseStartPayload is broadcast when voting begins
type VotingPhaseStartPayload struct {
	AccusedPlayer AccusedPlayer `json:"accusedPlayer"`
}

// AccusedPlayer identifies the player up for elimination
type AccusedPlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// EliminatedPlayer describes a player removed from the game, role revealed
type EliminatedPlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Role     Role   `json:"role"`
}

// VotingResultPayload is broadcast after a voting resolution
type VotingResultPayload struct {
	Eliminated    *EliminatedPlayer `json:"eliminated"`
	GuiltyVotes   int               `json:"guiltyVotes"`
	InnocentVotes int               `json:"innocentVotes"`
	TotalVotes    int               `json:"totalVotes"`
}

// TimerUpdatePayload is broadcast on every timer tick
type TimerUpdatePayload struct {
	TimeRemaining int   `json:"timeRemaining"`
	Phase         Phase `json:"phase"`
}

// GameOverPayload is broadcast once a win condition is met
type GameOverPayload struct {
	Result     GameResult        `json:"result"`
	Eliminated *EliminatedPlayer `json:"eliminated,omitempty"`
	Players    []PlayerInfo      `json:"players"`
}
