package domain

import "time"

// VoteChoice is a guilty/innocent verdict in a voting phase
type VoteChoice string

const (
	VoteGuilty   VoteChoice = "guilty"
	VoteInnocent VoteChoice = "innocent"
)

// NightAction records who targeted whom with a role action
type NightAction struct {
	Actor  string
	Target string
}

// Accusation records a day-phase nomination for elimination
type Accusation struct {
	Accuser   string    `json:"accuser"`
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger accumulates one round's night actions, accusations and votes.
// Night actions hold at most one entry per role; resubmission by the same
// role overwrites the earlier entry. Votes hold at most one entry per voter,
// likewise overwritten on resubmission.
type Ledger struct {
	kill         *NightAction
	save         *NightAction
	accusations  map[string]Accusation // accuser -> accusation
	votes        map[string]VoteChoice // voter -> choice
	votingTarget string
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		accusations: make(map[string]Accusation),
		votes:       make(map[string]VoteChoice),
	}
}

// RecordKill sets the mafia kill target, replacing any earlier submission
func (l *Ledger) RecordKill(actor, target string) {
	l.kill = &NightAction{Actor: actor, Target: target}
}

// RecordSave sets the doctor save target, replacing any earlier submission
func (l *Ledger) RecordSave(actor, target string) {
	l.save = &NightAction{Actor: actor, Target: target}
}

// KillTarget returns the current mafia target, if any
func (l *Ledger) KillTarget() (string, bool) {
	if l.kill == nil {
		return "", false
	}
	return l.kill.Target, true
}

// SaveTarget returns the current doctor target, if any
func (l *Ledger) SaveTarget() (string, bool) {
	if l.save == nil {
		return "", false
	}
	return l.save.Target, true
}

// ResolveKill applies the save against the kill: the kill stands unless the
// doctor picked exactly the same target. Returns the id of the player to
// eliminate, or false if no one dies tonight.
func (l *Ledger) ResolveKill() (string, bool) {
	if l.kill == nil {
		return "", false
	}
	if l.save != nil && l.save.Target == l.kill.Target {
		return "", false
	}
	return l.kill.Target, true
}

// AddAccusation records an accusation. Each accuser may accuse once per day,
// and each target may be accused by only one player per day (first wins).
func (l *Ledger) AddAccusation(accuser, target string) error {
	if _, ok := l.accusations[accuser]; ok {
		return ErrDuplicateAccusation
	}
	for _, acc := range l.accusations {
		if acc.Target == target {
			return ErrTargetAlreadyAccused
		}
	}
	l.accusations[accuser] = Accusation{
		Accuser:   accuser,
		Target:    target,
		Timestamp: time.Now(),
	}
	return nil
}

// HasAccusations returns true if anyone has been accused this day
func (l *Ledger) HasAccusations() bool {
	return len(l.accusations) > 0
}

// SetVotingTarget marks the player currently up for elimination
func (l *Ledger) SetVotingTarget(id string) {
	l.votingTarget = id
}

// VotingTarget returns the player currently up for elimination, if any
func (l *Ledger) VotingTarget() (string, bool) {
	if l.votingTarget == "" {
		return "", false
	}
	return l.votingTarget, true
}

// CastVote records a voter's choice, replacing any earlier one
func (l *Ledger) CastVote(voter string, choice VoteChoice) {
	l.votes[voter] = choice
}

// VoterCount returns the number of distinct players who have voted
func (l *Ledger) VoterCount() int {
	return len(l.votes)
}

// Tally counts guilty and innocent votes
func (l *Ledger) Tally() (guilty, innocent int) {
	for _, choice := range l.votes {
		switch choice {
		case VoteGuilty:
			guilty++
		case VoteInnocent:
			innocent++
		}
	}
	return guilty, innocent
}

// ClearNight drops the night actions after resolution
func (l *Ledger) ClearNight() {
	l.kill = nil
	l.save = nil
}

// ClearDay drops the accusations, votes and voting target after a voting
// resolution
func (l *Ledger) ClearDay() {
	l.accusations = make(map[string]Accusation)
	l.votes = make(map[string]VoteChoice)
	l.votingTarget = ""
}
