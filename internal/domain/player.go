package domain

import "time"

// MaxNicknameLength is the longest display name a player may use
const MaxNicknameLength = 20

// Player represents a player inside a room. It is owned exclusively by the
// room it belongs to; all mutation goes through Room methods.
type Player struct {
	ID       string    `json:"id"`
	Nickname string    `json:"nickname"`
	Role     Role      `json:"role,omitempty"`
	IsAlive  bool      `json:"isAlive"`
	IsHost   bool      `json:"isHost"`
	JoinedAt time.Time `json:"joinedAt"`
}

// NewPlayer creates a new player with the given ID and nickname
func NewPlayer(id, nickname string) *Player {
	return &Player{
		ID:       id,
		Nickname: nickname,
		Role:     "",
		IsAlive:  true,
		IsHost:   false,
		JoinedAt: time.Now(),
	}
}

// PlayerInfo is a public view of player data. Role is omitted unless the
// projection chose to reveal it (dead players during a game, everyone at
// game over).
type PlayerInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	IsAlive  bool   `json:"isAlive"`
	IsHost   bool   `json:"isHost"`
	Role     Role   `json:"role,omitempty"`
}

// ToInfo converts a Player to PlayerInfo without revealing the role
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:       p.ID,
		Nickname: p.Nickname,
		IsAlive:  p.IsAlive,
		IsHost:   p.IsHost,
	}
}

// ToInfoRevealDead is like ToInfo but includes the role for dead players
func (p *Player) ToInfoRevealDead() PlayerInfo {
	info := p.ToInfo()
	if !p.IsAlive {
		info.Role = p.Role
	}
	return info
}

// ToInfoFull includes the role unconditionally
func (p *Player) ToInfoFull() PlayerInfo {
	info := p.ToInfo()
	info.Role = p.Role
	return info
}
