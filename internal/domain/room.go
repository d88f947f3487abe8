package domain

import "time"

// Settings holds configurable room parameters
type Settings struct {
	MinPlayers     int           `json:"minPlayers"`
	MaxPlayers     int           `json:"maxPlayers"`
	NightDuration  time.Duration `json:"nightDuration"`
	DayDuration    time.Duration `json:"dayDuration"`
	VotingDuration time.Duration `json:"votingDuration"`
	ResultsDelay   time.Duration `json:"resultsDelay"`
	RoomCodeLength int           `json:"roomCodeLength"`
	TickInterval   time.Duration `json:"-"`
}

// DefaultSettings returns the default room settings
func DefaultSettings() Settings {
	return Settings{
		MinPlayers:     5,
		MaxPlayers:     12,
		NightDuration:  30 * time.Second,
		DayDuration:    60 * time.Second,
		VotingDuration: 30 * time.Second,
		ResultsDelay:   3 * time.Second,
		RoomCodeLength: 6,
		TickInterval:   time.Second,
	}
}

// Room holds one game's entire state: players in join order, the current
// phase, the round ledger and the eliminated set. Rooms are not safe for
// concurrent use; the session layer serializes access.
type Room struct {
	Code      string
	HostID    string
	Phase     Phase
	Result    GameResult
	Ledger    *Ledger
	Settings  Settings
	CreatedAt time.Time

	players    map[string]*Player
	order      []string // player IDs in join order
	eliminated map[string]struct{}
}

// NewRoom creates a new room in the lobby phase
func NewRoom(code string, settings Settings) *Room {
	return &Room{
		Code:       code,
		Phase:      PhaseLobby,
		Ledger:     NewLedger(),
		Settings:   settings,
		CreatedAt:  time.Now(),
		players:    make(map[string]*Player),
		order:      make([]string, 0, settings.MaxPlayers),
		eliminated: make(map[string]struct{}),
	}
}

// AddPlayer adds a player to the room. The first player becomes the host.
func (r *Room) AddPlayer(id, nickname string) (*Player, error) {
	if r.Phase != PhaseLobby {
		return nil, ErrGameAlreadyStarted
	}
	if len(r.players) >= r.Settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	player := NewPlayer(id, nickname)
	if len(r.players) == 0 {
		player.IsHost = true
		r.HostID = id
	}
	r.players[id] = player
	r.order = append(r.order, id)

	return player, nil
}

// RemovePlayer removes a player. If the host leaves and players remain, the
// earliest-joined remaining player becomes host.
func (r *Room) RemovePlayer(id string) (*Player, bool) {
	player, ok := r.players[id]
	if !ok {
		return nil, false
	}

	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.HostID == id && len(r.order) > 0 {
		r.HostID = r.order[0]
		r.players[r.HostID].IsHost = true
	}

	return player, true
}

// AdvancePhase moves the room to the target phase. Transitions outside the
// phase table are rejected.
func (r *Room) AdvancePhase(target Phase) error {
	if !r.Phase.CanTransitionTo(target) {
		return ErrInvalidPhase
	}
	r.Phase = target
	return nil
}

// GetPlayer returns a player by ID
func (r *Room) GetPlayer(id string) (*Player, bool) {
	player, ok := r.players[id]
	return player, ok
}

// PlayerCount returns the number of players in the room
func (r *Room) PlayerCount() int {
	return len(r.players)
}

// IsHost checks if the given player is the host
func (r *Room) IsHost(id string) bool {
	return r.HostID == id
}

// Players returns the players in join order
func (r *Room) Players() []*Player {
	players := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, r.players[id])
	}
	return players
}

// AliveCount returns the number of players still alive
func (r *Room) AliveCount() int {
	count := 0
	for _, p := range r.players {
		if p.IsAlive {
			count++
		}
	}
	return count
}

// Lineup returns the player list without roles
func (r *Room) Lineup() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.order))
	for _, p := range r.Players() {
		infos = append(infos, p.ToInfo())
	}
	return infos
}

// LineupRevealDead returns the player list with roles revealed for dead
// players only
func (r *Room) LineupRevealDead() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.order))
	for _, p := range r.Players() {
		infos = append(infos, p.ToInfoRevealDead())
	}
	return infos
}

// LineupFull returns the player list with every role revealed
func (r *Room) LineupFull() []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(r.order))
	for _, p := range r.Players() {
		infos = append(infos, p.ToInfoFull())
	}
	return infos
}

// Start assigns roles and moves the room into the first night. Only valid
// from the lobby with enough players.
func (r *Room) Start() error {
	if r.Phase != PhaseLobby {
		return ErrGameAlreadyStarted
	}
	if len(r.players) < r.Settings.MinPlayers {
		return ErrNotEnoughPlayers
	}

	roles := AssignRoles(len(r.order))
	for i, id := range r.order {
		r.players[id].Role = roles[i]
	}

	r.Ledger = NewLedger()
	return r.AdvancePhase(PhaseNight)
}

// RecordNightAction handles a night submission. Kill and save targets land
// in the ledger, overwriting any earlier submission for the same role. An
// investigation returns the target immediately and leaves the ledger
// untouched; investigating an unknown target returns nothing.
func (r *Room) RecordNightAction(playerID string, action NightActionType, targetID string) (*Player, error) {
	if r.Phase != PhaseNight {
		return nil, ErrInvalidPhase
	}
	player, ok := r.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if !player.IsAlive {
		return nil, ErrPlayerDead
	}

	switch {
	case player.Role == RoleMafia && action == ActionKill:
		r.Ledger.RecordKill(playerID, targetID)
	case player.Role == RoleDoctor && action == ActionSave:
		r.Ledger.RecordSave(playerID, targetID)
	case player.Role == RolePolice && action == ActionInvestigate:
		if target, ok := r.players[targetID]; ok {
			return target, nil
		}
	}

	return nil, nil
}

// NightOutcome is the result of resolving one night
type NightOutcome struct {
	Killed *Player
	Saved  string // doctor's target, whether or not it mattered
}

// ResolveNight applies the night's kill and save, eliminates the victim if
// the kill stands, and clears the night actions.
func (r *Room) ResolveNight() NightOutcome {
	outcome := NightOutcome{}
	if target, ok := r.Ledger.SaveTarget(); ok {
		outcome.Saved = target
	}

	if victimID, ok := r.Ledger.ResolveKill(); ok {
		if victim, ok := r.players[victimID]; ok {
			victim.IsAlive = false
			r.eliminated[victimID] = struct{}{}
			outcome.Killed = victim
		}
	}

	r.Ledger.ClearNight()
	return outcome
}

// Accuse nominates a target for elimination and moves the room to voting.
func (r *Room) Accuse(accuserID, targetID string) error {
	if r.Phase != PhaseDay {
		return ErrInvalidPhase
	}
	accuser, ok := r.players[accuserID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !accuser.IsAlive {
		return ErrPlayerDead
	}
	target, ok := r.players[targetID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !target.IsAlive {
		return ErrPlayerDead
	}

	if err := r.Ledger.AddAccusation(accuserID, targetID); err != nil {
		return err
	}

	r.Ledger.SetVotingTarget(targetID)
	return r.AdvancePhase(PhaseVoting)
}

// CastVote records a guilty/innocent vote from an alive player. The latest
// submission per voter wins.
func (r *Room) CastVote(voterID string, choice VoteChoice) error {
	if r.Phase != PhaseVoting {
		return ErrInvalidPhase
	}
	voter, ok := r.players[voterID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !voter.IsAlive {
		return ErrPlayerDead
	}

	r.Ledger.CastVote(voterID, choice)
	return nil
}

// AllAliveVoted reports whether every alive player has cast a vote
func (r *Room) AllAliveVoted() bool {
	return r.Ledger.VoterCount() >= r.AliveCount()
}

// VotingOutcome is the result of resolving one vote
type VotingOutcome struct {
	Eliminated *Player
	Guilty     int
	Innocent   int
}

// ResolveVoting tallies the vote and eliminates the target on a strict
// guilty majority. Ties and innocent majorities eliminate no one. The day's
// accusations, votes and voting target are cleared either way.
func (r *Room) ResolveVoting() VotingOutcome {
	guilty, innocent := r.Ledger.Tally()
	outcome := VotingOutcome{Guilty: guilty, Innocent: innocent}

	if targetID, ok := r.Ledger.VotingTarget(); ok && guilty > innocent {
		if target, ok := r.players[targetID]; ok {
			target.IsAlive = false
			r.eliminated[targetID] = struct{}{}
			outcome.Eliminated = target
		}
	}

	r.Ledger.ClearDay()
	return outcome
}

// CheckGameEnd evaluates the win conditions over alive players: town wins
// when no mafia remain; mafia win the moment they are no longer outnumbered.
// A met condition sets the result and the terminal phase.
func (r *Room) CheckGameEnd() bool {
	aliveMafia := 0
	aliveTown := 0
	for _, p := range r.players {
		if !p.IsAlive {
			continue
		}
		if p.Role.IsMafia() {
			aliveMafia++
		} else {
			aliveTown++
		}
	}

	if aliveMafia == 0 {
		r.Result = ResultTown
		return r.AdvancePhase(PhaseGameOver) == nil
	}
	if aliveMafia >= aliveTown {
		r.Result = ResultMafia
		return r.AdvancePhase(PhaseGameOver) == nil
	}

	return false
}

// IsEliminated reports whether a player has been eliminated this game
func (r *Room) IsEliminated(id string) bool {
	_, ok := r.eliminated[id]
	return ok
}
