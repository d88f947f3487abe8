package ws

import "encoding/json"

// MessageType represents the type of an inbound WebSocket message
type MessageType string

// Client → Server message types. This is a closed set; anything else is
// dropped.
const (
	MsgCreateRoom   MessageType = "create_room"
	MsgJoinRoom     MessageType = "join_room"
	MsgStartGame    MessageType = "start_game"
	MsgNightAction  MessageType = "night_action"
	MsgDayChat      MessageType = "day_chat"
	MsgAccusePlayer MessageType = "accuse_player"
	MsgVote         MessageType = "vote"
	MsgPing         MessageType = "ping"
)

// ClientMessage represents a message from client to server. The payload is
// decoded per message type.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateRoomPayload carries a create_room request
type CreateRoomPayload struct {
	Nickname string `json:"nickname"`
}

// JoinRoomPayload carries a join_room request
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Nickname string `json:"nickname"`
}

// NightActionPayload carries a night_action submission
type NightActionPayload struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

// DayChatPayload carries a day_chat line
type DayChatPayload struct {
	Message string `json:"message"`
}

// AccusePayload carries an accuse_player nomination
type AccusePayload struct {
	Target string `json:"target"`
}

// VotePayload carries a guilty/innocent vote
type VotePayload struct {
	Vote   string `json:"vote"`
	Target string `json:"target,omitempty"`
}
