package app

import (
	"log/slog"
	"sync"
	"time"

	"whooded/internal/domain"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	PlayerID() string
	Close() error
}

// GameSession wraps a room with concurrency control, client management and
// phase timers. Every mutation of the underlying room goes through this
// type's mutex, which serializes inbound events and timer completions for
// the room. Invalid submissions return an error to the caller but never
// mutate state; the gateway decides which of them reach the client.
type GameSession struct {
	room   *domain.Room
	mu     sync.Mutex
	logger *slog.Logger

	clients   map[string]ClientConnection // playerID -> client
	clientsMu sync.RWMutex

	timer *PhaseTimer // at most one active countdown per room

	events chan *domain.GameEvent
	done   chan struct{}
	closed bool
}

// NewGameSession creates a new game session around a room
func NewGameSession(room *domain.Room, logger *slog.Logger) *GameSession {
	session := &GameSession{
		room:    room,
		logger:  logger,
		clients: make(map[string]ClientConnection),
		events:  make(chan *domain.GameEvent, 100),
		done:    make(chan struct{}),
	}

	go session.eventLoop()

	return session
}

// Code returns the room code
func (s *GameSession) Code() string {
	return s.room.Code
}

// CreatedAt returns when the room was created
func (s *GameSession) CreatedAt() time.Time {
	return s.room.CreatedAt
}

// Phase returns the current room phase
func (s *GameSession) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Phase
}

// PlayerCount returns the number of players in the room
func (s *GameSession) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.PlayerCount()
}

// RegisterClient registers a client connection for a player
func (s *GameSession) RegisterClient(client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.PlayerID()] = client
}

// UnregisterClient removes a client connection
func (s *GameSession) UnregisterClient(playerID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, playerID)
}

// AddPlayer adds a player to the room
func (s *GameSession) AddPlayer(playerID, nickname string) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.AddPlayer(playerID, nickname)
}

// AnnounceCreated unicasts the room state to the freshly created room's host
func (s *GameSession) AnnounceCreated(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queueEvent(domain.NewPlayerEvent(domain.EventRoomCreated, s.room.Code, playerID, &domain.RoomStatePayload{
		RoomCode: s.room.Code,
		Players:  s.room.Lineup(),
	}))
}

// AnnounceJoined unicasts the room state to a joiner and broadcasts the
// updated lineup to the room
func (s *GameSession) AnnounceJoined(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &domain.RoomStatePayload{
		RoomCode: s.room.Code,
		Players:  s.room.Lineup(),
	}
	s.queueEvent(domain.NewPlayerEvent(domain.EventRoomJoined, s.room.Code, playerID, state))
	s.queueEvent(domain.NewEvent(domain.EventPlayerJoined, s.room.Code, state))
}

// RemovePlayer removes a player from the room, broadcasts the updated
// lineup, and returns the number of players left
func (s *GameSession) RemovePlayer(playerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.room.RemovePlayer(playerID); !ok {
		return s.room.PlayerCount()
	}

	remaining := s.room.PlayerCount()
	if remaining > 0 {
		s.queueEvent(domain.NewEvent(domain.EventPlayerLeft, s.room.Code, &domain.RoomStatePayload{
			RoomCode: s.room.Code,
			Players:  s.room.Lineup(),
		}))
	}

	return remaining
}

// StartGame assigns roles and begins the first night (host only)
func (s *GameSession) StartGame(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.IsHost(playerID) {
		return domain.ErrNotHost
	}

	if err := s.room.Start(); err != nil {
		return err
	}

	for _, p := range s.room.Players() {
		s.queueEvent(domain.NewPlayerEvent(domain.EventRoleAssigned, s.room.Code, p.ID, &domain.RoleAssignedPayload{
			Role:  p.Role,
			Phase: domain.PhaseNight,
		}))
	}

	s.queueEvent(domain.NewEvent(domain.EventGameStarted, s.room.Code, &domain.GameStartedPayload{
		Phase:   domain.PhaseNight,
		Players: s.room.Lineup(),
	}))

	s.logger.Info("game started", "roomCode", s.room.Code, "players", s.room.PlayerCount())

	s.startTimerLocked(s.room.Settings.NightDuration, s.resolveNight)
	return nil
}

// SubmitNightAction records a role-gated night action. Police
// investigations return an immediate private result; mafia and doctor
// submissions land in the ledger, later ones replacing earlier ones.
func (s *GameSession) SubmitNightAction(playerID string, action domain.NightActionType, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	investigated, err := s.room.RecordNightAction(playerID, action, targetID)
	if err != nil {
		return err
	}

	if investigated != nil {
		s.queueEvent(domain.NewPlayerEvent(domain.EventInvestigationResult, s.room.Code, playerID, &domain.InvestigationResultPayload{
			Target:   investigated.ID,
			Role:     investigated.Role,
			Nickname: investigated.Nickname,
		}))
	}

	return nil
}

// DayChat broadcasts a chat line from an alive player during the day
func (s *GameSession) DayChat(playerID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.Phase != domain.PhaseDay {
		return domain.ErrInvalidPhase
	}
	player, ok := s.room.GetPlayer(playerID)
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if !player.IsAlive {
		return domain.ErrPlayerDead
	}

	s.queueEvent(domain.NewEvent(domain.EventChatMessage, s.room.Code, &domain.ChatMessagePayload{
		From:      player.Nickname,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}))

	return nil
}

// Accuse nominates a player for elimination, cancelling the day timer and
// opening a voting phase on the target
func (s *GameSession) Accuse(accuserID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.Accuse(accuserID, targetID); err != nil {
		return err
	}

	accuser, _ := s.room.GetPlayer(accuserID)
	target, _ := s.room.GetPlayer(targetID)

	s.queueEvent(domain.NewEvent(domain.EventPlayerAccused, s.room.Code, &domain.PlayerAccusedPayload{
		Accuser:   accuser.Nickname,
		Accused:   target.Nickname,
		AccusedID: targetID,
	}))
	s.queueEvent(domain.NewEvent(domain.EventVotingPhaseStart, s.room.Code, &domain.VotingPhaseStartPayload{
		AccusedPlayer: domain.AccusedPlayer{ID: targetID, Nickname: target.Nickname},
	}))

	s.startTimerLocked(s.room.Settings.VotingDuration, s.resolveVoting)
	return nil
}

// CastVote records a guilty/innocent vote. Once every alive player has
// voted the resolution runs immediately, preempting the timer.
func (s *GameSession) CastVote(voterID string, choice domain.VoteChoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.CastVote(voterID, choice); err != nil {
		return err
	}

	if s.room.AllAliveVoted() {
		s.cancelTimerLocked()
		s.resolveVotingLocked()
	}

	return nil
}

// resolveNight runs on night-timer expiry: applies the kill/save outcome,
// checks the win conditions, and opens the day phase.
func (s *GameSession) resolveNight() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.room.Phase != domain.PhaseNight {
		return
	}

	outcome := s.room.ResolveNight()

	if s.room.CheckGameEnd() {
		s.gameOverLocked(nil)
		return
	}

	if err := s.room.AdvancePhase(domain.PhaseDay); err != nil {
		return
	}

	result := &domain.NightResultPayload{Saved: outcome.Saved}
	if outcome.Killed != nil {
		result.Killed = outcome.Killed.ID
		s.logger.Info("player eliminated at night", "roomCode", s.room.Code, "playerID", outcome.Killed.ID)
	}

	s.queueEvent(domain.NewEvent(domain.EventDayPhaseStart, s.room.Code, &domain.PhaseStartPayload{
		Players:     s.room.LineupRevealDead(),
		NightResult: result,
	}))

	s.startTimerLocked(s.room.Settings.DayDuration, s.dayExpired)
}

// dayExpired runs on day-timer expiry. A day that produced no accusation is
// a no-op day: the room goes straight back to night.
func (s *GameSession) dayExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.room.Phase != domain.PhaseDay {
		return
	}
	if s.room.Ledger.HasAccusations() {
		return
	}

	if err := s.room.AdvancePhase(domain.PhaseNight); err != nil {
		return
	}
	s.beginNightLocked()
}

// resolveVoting runs on voting-timer expiry
func (s *GameSession) resolveVoting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolveVotingLocked()
}

func (s *GameSession) resolveVotingLocked() {
	if s.closed || s.room.Phase != domain.PhaseVoting {
		return
	}

	outcome := s.room.ResolveVoting()

	var eliminated *domain.EliminatedPlayer
	if outcome.Eliminated != nil {
		eliminated = &domain.EliminatedPlayer{
			ID:       outcome.Eliminated.ID,
			Nickname: outcome.Eliminated.Nickname,
			Role:     outcome.Eliminated.Role,
		}
		s.logger.Info("player voted out", "roomCode", s.room.Code, "playerID", eliminated.ID)
	}

	s.queueEvent(domain.NewEvent(domain.EventVotingResult, s.room.Code, &domain.VotingResultPayload{
		Eliminated:    eliminated,
		GuiltyVotes:   outcome.Guilty,
		InnocentVotes: outcome.Innocent,
		TotalVotes:    outcome.Guilty + outcome.Innocent,
	}))

	if s.room.CheckGameEnd() {
		s.gameOverLocked(eliminated)
		return
	}

	if err := s.room.AdvancePhase(domain.PhaseNight); err != nil {
		return
	}

	// Leave the result on screen before the next night begins
	delay := s.room.Settings.ResultsDelay
	go func() {
		select {
		case <-s.done:
			return
		case <-time.After(delay):
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.room.Phase != domain.PhaseNight || s.timer != nil {
			return
		}
		s.beginNightLocked()
	}()
}

// beginNightLocked broadcasts the night start and arms the night timer.
// Caller must hold the session lock with the phase already set to night.
func (s *GameSession) beginNightLocked() {
	s.queueEvent(domain.NewEvent(domain.EventNightPhaseStart, s.room.Code, &domain.PhaseStartPayload{
		Players: s.room.LineupRevealDead(),
	}))
	s.startTimerLocked(s.room.Settings.NightDuration, s.resolveNight)
}

// gameOverLocked finalizes the session once a win condition has been met
func (s *GameSession) gameOverLocked(eliminated *domain.EliminatedPlayer) {
	s.cancelTimerLocked()

	s.queueEvent(domain.NewEvent(domain.EventGameOver, s.room.Code, &domain.GameOverPayload{
		Result:     s.room.Result,
		Eliminated: eliminated,
		Players:    s.room.LineupFull(),
	}))

	s.logger.Info("game over", "roomCode", s.room.Code, "result", s.room.Result)
}

// startTimerLocked arms a fresh countdown for the current phase,
// superseding any active one. Ticks broadcast timer_update; completion
// re-enters the session through onComplete.
func (s *GameSession) startTimerLocked(duration time.Duration, onComplete func()) {
	s.cancelTimerLocked()

	interval := s.room.Settings.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	units := int(duration / interval)
	phase := s.room.Phase
	code := s.room.Code

	s.timer = startPhaseTimer(units, interval, func(remaining int) {
		s.queueEvent(domain.NewEvent(domain.EventTimerUpdate, code, &domain.TimerUpdatePayload{
			TimeRemaining: remaining,
			Phase:         phase,
		}))
	}, func(t *PhaseTimer) {
		s.clearTimer(t)
		onComplete()
	})
}

func (s *GameSession) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
}

// clearTimer drops the timer reference after its completion fired. A timer
// that expired while another operation superseded it under the session lock
// must not discard its successor, so only the matching reference is cleared.
func (s *GameSession) clearTimer(t *PhaseTimer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == t {
		s.timer = nil
	}
}

// SendError unicasts a user-facing error event to one player
func (s *GameSession) SendError(eventType domain.EventType, playerID, message string) {
	s.queueEvent(domain.NewPlayerEvent(eventType, s.room.Code, playerID, &domain.ErrorPayload{
		Message: message,
	}))
}

// queueEvent adds an event to the broadcast queue
func (s *GameSession) queueEvent(event *domain.GameEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "roomCode", s.room.Code, "type", event.Type)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *GameSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to the addressed player, or to everyone
// when no player is addressed
func (s *GameSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if event.PlayerID != "" {
		if client, ok := s.clients[event.PlayerID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "playerID", event.PlayerID, "error", err)
			}
		}
		return
	}

	for playerID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "playerID", playerID, "error", err)
		}
	}
}

// Close shuts down the session, its timer and all client connections
func (s *GameSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelTimerLocked()
	s.mu.Unlock()

	close(s.done)

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
