package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"whooded/internal/app"
	"whooded/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection. One connection is one
// player; the playerID is issued at upgrade and stays stable for the
// connection's lifetime. The session pointer is owned by the read pump and
// set once the player creates or joins a room.
type Client struct {
	conn     *websocket.Conn
	registry *app.RoomRegistry
	session  *app.GameSession
	playerID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, registry *app.RoomRegistry, playerID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		registry: registry,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// PlayerID returns the connection identifier for this client
func (c *Client) PlayerID() string {
	return c.playerID
}

// Send implements app.ClientConnection
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "playerID", c.playerID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection. When the
// connection drops for any reason the player leaves their room; a
// disconnect is an ordinary leave, not an error.
func (c *Client) readPump() {
	defer func() {
		c.registry.Leave(c.playerID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches an inbound message by its tag. Out-of-phase and
// otherwise invalid submissions are dropped without a reply; only join and
// accusation failures are surfaced.
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Debug("invalid message, dropped", "playerID", c.playerID)
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		c.handleCreateRoom(msg.Payload)
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgStartGame:
		c.handleStartGame()
	case MsgNightAction:
		c.handleNightAction(msg.Payload)
	case MsgDayChat:
		c.handleDayChat(msg.Payload)
	case MsgAccusePlayer:
		c.handleAccuse(msg.Payload)
	case MsgVote:
		c.handleVote(msg.Payload)
	case MsgPing:
		c.sendPong()
	default:
		c.logger.Debug("unknown message type, dropped", "type", msg.Type, "playerID", c.playerID)
	}
}

func (c *Client) handleCreateRoom(payload json.RawMessage) {
	var req CreateRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.sendJoinError("Failed to create room")
		return
	}

	nickname, ok := validNickname(req.Nickname)
	if !ok {
		c.sendJoinError("Invalid nickname")
		return
	}

	if c.session != nil {
		// Already in a room; one room per connection
		return
	}

	session, err := c.registry.CreateRoom(c.playerID, nickname)
	if err != nil {
		c.sendJoinError("Failed to create room")
		return
	}

	c.session = session
	session.RegisterClient(c)
	session.AnnounceCreated(c.playerID)
}

func (c *Client) handleJoinRoom(payload json.RawMessage) {
	var req JoinRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.sendJoinError("Failed to join room")
		return
	}

	nickname, ok := validNickname(req.Nickname)
	if !ok {
		c.sendJoinError("Invalid nickname")
		return
	}

	if c.session != nil {
		return
	}

	session, err := c.registry.JoinRoom(req.RoomCode, c.playerID, nickname)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			c.sendJoinError("Room not found")
		case errors.Is(err, domain.ErrRoomFull):
			c.sendJoinError("Room is full")
		case errors.Is(err, domain.ErrGameAlreadyStarted):
			c.sendJoinError("Game already started")
		default:
			c.sendJoinError("Failed to join room")
		}
		return
	}

	c.session = session
	session.RegisterClient(c)
	session.AnnounceJoined(c.playerID)
}

func (c *Client) handleStartGame() {
	if c.session == nil {
		return
	}
	if err := c.session.StartGame(c.playerID); err != nil {
		c.logger.Debug("start_game dropped", "playerID", c.playerID, "error", err)
	}
}

func (c *Client) handleNightAction(payload json.RawMessage) {
	if c.session == nil {
		return
	}

	var req NightActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	var action domain.NightActionType
	switch req.Action {
	case string(domain.ActionKill):
		action = domain.ActionKill
	case string(domain.ActionSave):
		action = domain.ActionSave
	case string(domain.ActionInvestigate):
		action = domain.ActionInvestigate
	default:
		return
	}

	if err := c.session.SubmitNightAction(c.playerID, action, req.Target); err != nil {
		c.logger.Debug("night_action dropped", "playerID", c.playerID, "error", err)
	}
}

func (c *Client) handleDayChat(payload json.RawMessage) {
	if c.session == nil {
		return
	}

	var req DayChatPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.Message == "" {
		return
	}

	if err := c.session.DayChat(c.playerID, req.Message); err != nil {
		c.logger.Debug("day_chat dropped", "playerID", c.playerID, "error", err)
	}
}

func (c *Client) handleAccuse(payload json.RawMessage) {
	if c.session == nil {
		return
	}

	var req AccusePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	err := c.session.Accuse(c.playerID, req.Target)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicateAccusation), errors.Is(err, domain.ErrTargetAlreadyAccused):
		c.session.SendError(domain.EventAccusationError, c.playerID, err.Error())
	default:
		c.logger.Debug("accuse_player dropped", "playerID", c.playerID, "error", err)
	}
}

func (c *Client) handleVote(payload json.RawMessage) {
	if c.session == nil {
		return
	}

	var req VotePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	var choice domain.VoteChoice
	switch req.Vote {
	case string(domain.VoteGuilty):
		choice = domain.VoteGuilty
	case string(domain.VoteInnocent):
		choice = domain.VoteInnocent
	default:
		return
	}

	if err := c.session.CastVote(c.playerID, choice); err != nil {
		c.logger.Debug("vote dropped", "playerID", c.playerID, "error", err)
	}
}

// sendJoinError unicasts a join_error directly; the client may not belong
// to any session yet
func (c *Client) sendJoinError(message string) {
	c.Send(domain.NewPlayerEvent(domain.EventJoinError, "", c.playerID, &domain.ErrorPayload{
		Message: message,
	}))
}

func (c *Client) sendPong() {
	c.Send(map[string]string{"type": "pong"})
}

// validNickname trims and validates a display name. The length limit counts
// runes so multibyte nicknames are not penalized.
func validNickname(nickname string) (string, bool) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || utf8.RuneCountInString(nickname) > domain.MaxNicknameLength {
		return "", false
	}
	return nickname, true
}
