package domain

// Phase represents the current phase of a room
type Phase string

const (
	PhaseLobby    Phase = "lobby"     // Waiting for players to join
	PhaseNight    Phase = "night"     // Mafia/Doctor/Police submit actions
	PhaseDay      Phase = "day"       // Open discussion, accusations allowed
	PhaseVoting   Phase = "voting"    // Guilty/innocent vote on the accused
	PhaseGameOver Phase = "game_over" // Terminal; a result has been set
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:  {PhaseNight},
		PhaseNight:  {PhaseDay, PhaseGameOver},
		PhaseDay:    {PhaseVoting, PhaseNight}, // A day with no accusation falls through to night
		PhaseVoting: {PhaseNight, PhaseGameOver},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// GameResult is the winning faction once a room reaches game over
type GameResult string

const (
	ResultTown  GameResult = "townspeople"
	ResultMafia GameResult = "mafia"
)
