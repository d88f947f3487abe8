package domain

import "errors"

// Domain errors. The first group is surfaced to clients as join_error or
// accusation_error; everything else is dropped silently by the gateway.
var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomFull             = errors.New("room is full")
	ErrGameAlreadyStarted   = errors.New("game already started")
	ErrDuplicateAccusation  = errors.New("you can only accuse once per day")
	ErrTargetAlreadyAccused = errors.New("this player is already accused")

	ErrNotHost          = errors.New("only host can perform this action")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrInvalidPhase     = errors.New("invalid action for current phase")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerDead       = errors.New("player is not alive")
)
