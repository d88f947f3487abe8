package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T, playerCount int) *Room {
	t.Helper()
	room := NewRoom("ABC123", DefaultSettings())
	for i := 0; i < playerCount; i++ {
		_, err := room.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("player%d", i))
		require.NoError(t, err)
	}
	return room
}

// nightRoom builds a 5-player room already in the night phase with fixed
// roles: p0 mafia, p1 police, p2 doctor, p3/p4 citizens.
func nightRoom(t *testing.T) *Room {
	t.Helper()
	room := newTestRoom(t, 5)
	roles := []Role{RoleMafia, RolePolice, RoleDoctor, RoleCitizen, RoleCitizen}
	for i, p := range room.Players() {
		p.Role = roles[i]
	}
	room.Phase = PhaseNight
	return room
}

func TestAddPlayer(t *testing.T) {
	room := newTestRoom(t, 3)

	assert.Equal(t, 3, room.PlayerCount())
	assert.Equal(t, "p0", room.HostID)

	host, ok := room.GetPlayer("p0")
	require.True(t, ok)
	assert.True(t, host.IsHost)

	second, ok := room.GetPlayer("p1")
	require.True(t, ok)
	assert.False(t, second.IsHost)

	// Join order is preserved
	players := room.Players()
	assert.Equal(t, "p0", players[0].ID)
	assert.Equal(t, "p2", players[2].ID)
}

func TestAddPlayerFull(t *testing.T) {
	room := newTestRoom(t, 12)
	_, err := room.AddPlayer("extra", "extra")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestAddPlayerAfterStart(t *testing.T) {
	room := newTestRoom(t, 5)
	require.NoError(t, room.Start())

	_, err := room.AddPlayer("late", "late")
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestRemovePlayerReassignsHost(t *testing.T) {
	room := newTestRoom(t, 3)

	_, ok := room.RemovePlayer("p0")
	require.True(t, ok)

	assert.Equal(t, "p1", room.HostID)
	newHost, ok := room.GetPlayer("p1")
	require.True(t, ok)
	assert.True(t, newHost.IsHost)
}

func TestRemovePlayerMissing(t *testing.T) {
	room := newTestRoom(t, 2)
	_, ok := room.RemovePlayer("ghost")
	assert.False(t, ok)
	assert.Equal(t, 2, room.PlayerCount())
}

func TestRejoinYieldsFreshPlayer(t *testing.T) {
	room := newTestRoom(t, 2)

	p1, _ := room.GetPlayer("p1")
	p1.IsAlive = false

	room.RemovePlayer("p1")
	fresh, err := room.AddPlayer("p1", "player1")
	require.NoError(t, err)
	assert.True(t, fresh.IsAlive)
	assert.Empty(t, fresh.Role)
	assert.False(t, fresh.IsHost)
}

func TestStart(t *testing.T) {
	room := newTestRoom(t, 4)
	assert.ErrorIs(t, room.Start(), ErrNotEnoughPlayers)

	_, err := room.AddPlayer("p4", "player4")
	require.NoError(t, err)
	require.NoError(t, room.Start())

	assert.Equal(t, PhaseNight, room.Phase)

	counts := make(map[Role]int)
	for _, p := range room.Players() {
		counts[p.Role]++
	}
	assert.Equal(t, 1, counts[RolePolice])
	assert.Equal(t, 1, counts[RoleDoctor])
	assert.Equal(t, 1, counts[RoleMafia])
	assert.Equal(t, 2, counts[RoleCitizen])

	assert.ErrorIs(t, room.Start(), ErrGameAlreadyStarted)
}

func TestRolesUnsetInLobby(t *testing.T) {
	room := newTestRoom(t, 5)
	for _, p := range room.Players() {
		assert.Empty(t, p.Role)
	}
}

func TestRecordNightActionGating(t *testing.T) {
	room := nightRoom(t)

	// Citizen actions are ignored without error
	investigated, err := room.RecordNightAction("p3", ActionKill, "p0")
	require.NoError(t, err)
	assert.Nil(t, investigated)
	_, ok := room.Ledger.KillTarget()
	assert.False(t, ok)

	// Mafia kill lands in the ledger
	_, err = room.RecordNightAction("p0", ActionKill, "p3")
	require.NoError(t, err)
	target, ok := room.Ledger.KillTarget()
	require.True(t, ok)
	assert.Equal(t, "p3", target)

	// Doctor save lands in the ledger
	_, err = room.RecordNightAction("p2", ActionSave, "p3")
	require.NoError(t, err)
	target, ok = room.Ledger.SaveTarget()
	require.True(t, ok)
	assert.Equal(t, "p3", target)

	// Police investigation returns the target without touching the ledger
	investigated, err = room.RecordNightAction("p1", ActionInvestigate, "p0")
	require.NoError(t, err)
	require.NotNil(t, investigated)
	assert.Equal(t, RoleMafia, investigated.Role)

	// Investigating an unknown target is silently ignored
	investigated, err = room.RecordNightAction("p1", ActionInvestigate, "ghost")
	require.NoError(t, err)
	assert.Nil(t, investigated)
}

func TestRecordNightActionGuards(t *testing.T) {
	room := nightRoom(t)

	p0, _ := room.GetPlayer("p0")
	p0.IsAlive = false
	_, err := room.RecordNightAction("p0", ActionKill, "p3")
	assert.ErrorIs(t, err, ErrPlayerDead)

	room.Phase = PhaseDay
	_, err = room.RecordNightAction("p2", ActionSave, "p3")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestInvestigateDeadTargetAllowed(t *testing.T) {
	room := nightRoom(t)
	p3, _ := room.GetPlayer("p3")
	p3.IsAlive = false

	investigated, err := room.RecordNightAction("p1", ActionInvestigate, "p3")
	require.NoError(t, err)
	require.NotNil(t, investigated)
	assert.Equal(t, RoleCitizen, investigated.Role)
}

func TestResolveNight(t *testing.T) {
	t.Run("kill stands", func(t *testing.T) {
		room := nightRoom(t)
		room.RecordNightAction("p0", ActionKill, "p3")
		room.RecordNightAction("p2", ActionSave, "p4")

		outcome := room.ResolveNight()
		require.NotNil(t, outcome.Killed)
		assert.Equal(t, "p3", outcome.Killed.ID)
		assert.False(t, outcome.Killed.IsAlive)
		assert.True(t, room.IsEliminated("p3"))
	})

	t.Run("exact save cancels", func(t *testing.T) {
		room := nightRoom(t)
		room.RecordNightAction("p0", ActionKill, "p3")
		room.RecordNightAction("p2", ActionSave, "p3")

		outcome := room.ResolveNight()
		assert.Nil(t, outcome.Killed)
		p3, _ := room.GetPlayer("p3")
		assert.True(t, p3.IsAlive)
	})

	t.Run("doctor alone eliminates no one", func(t *testing.T) {
		room := nightRoom(t)
		room.RecordNightAction("p2", ActionSave, "p3")

		outcome := room.ResolveNight()
		assert.Nil(t, outcome.Killed)
		assert.Equal(t, 5, room.AliveCount())
	})

	t.Run("resubmission replaces earlier kill", func(t *testing.T) {
		room := nightRoom(t)
		room.RecordNightAction("p0", ActionKill, "p3")
		room.RecordNightAction("p0", ActionKill, "p4")

		outcome := room.ResolveNight()
		require.NotNil(t, outcome.Killed)
		assert.Equal(t, "p4", outcome.Killed.ID)
	})
}

func TestAccuse(t *testing.T) {
	room := nightRoom(t)
	room.Phase = PhaseDay

	require.NoError(t, room.Accuse("p3", "p0"))
	assert.Equal(t, PhaseVoting, room.Phase)

	target, ok := room.Ledger.VotingTarget()
	require.True(t, ok)
	assert.Equal(t, "p0", target)
}

func TestAccuseRejections(t *testing.T) {
	room := nightRoom(t)
	room.Phase = PhaseDay

	require.NoError(t, room.Accuse("p3", "p0"))

	// Phase moved to voting; further accusations are out of phase
	assert.ErrorIs(t, room.Accuse("p4", "p1"), ErrInvalidPhase)

	// Same-day rules, exercised back in the day phase
	room.Phase = PhaseDay
	assert.ErrorIs(t, room.Accuse("p3", "p1"), ErrDuplicateAccusation)
	assert.ErrorIs(t, room.Accuse("p4", "p0"), ErrTargetAlreadyAccused)
	assert.Equal(t, PhaseDay, room.Phase)
}

func TestAccuseGuards(t *testing.T) {
	room := nightRoom(t)
	room.Phase = PhaseDay

	dead, _ := room.GetPlayer("p4")
	dead.IsAlive = false

	assert.ErrorIs(t, room.Accuse("p4", "p0"), ErrPlayerDead)
	assert.ErrorIs(t, room.Accuse("p3", "p4"), ErrPlayerDead)
	assert.ErrorIs(t, room.Accuse("p3", "ghost"), ErrPlayerNotFound)
	assert.ErrorIs(t, room.Accuse("ghost", "p0"), ErrPlayerNotFound)
}

func votingRoom(t *testing.T) *Room {
	t.Helper()
	room := nightRoom(t)
	room.Phase = PhaseDay
	require.NoError(t, room.Accuse("p3", "p0"))
	return room
}

func TestCastVoteGuards(t *testing.T) {
	room := votingRoom(t)

	dead, _ := room.GetPlayer("p4")
	dead.IsAlive = false

	assert.ErrorIs(t, room.CastVote("p4", VoteGuilty), ErrPlayerDead)
	assert.ErrorIs(t, room.CastVote("ghost", VoteGuilty), ErrPlayerNotFound)

	room.Phase = PhaseDay
	assert.ErrorIs(t, room.CastVote("p1", VoteGuilty), ErrInvalidPhase)
}

func TestResolveVoting(t *testing.T) {
	t.Run("guilty majority eliminates", func(t *testing.T) {
		room := votingRoom(t)
		room.CastVote("p1", VoteGuilty)
		room.CastVote("p2", VoteGuilty)
		room.CastVote("p3", VoteGuilty)
		room.CastVote("p4", VoteInnocent)
		room.CastVote("p0", VoteInnocent)

		outcome := room.ResolveVoting()
		require.NotNil(t, outcome.Eliminated)
		assert.Equal(t, "p0", outcome.Eliminated.ID)
		assert.Equal(t, 3, outcome.Guilty)
		assert.Equal(t, 2, outcome.Innocent)
		assert.True(t, room.IsEliminated("p0"))
		assert.False(t, room.Ledger.HasAccusations())
	})

	t.Run("tie eliminates no one", func(t *testing.T) {
		room := votingRoom(t)
		room.CastVote("p1", VoteGuilty)
		room.CastVote("p2", VoteGuilty)
		room.CastVote("p3", VoteInnocent)
		room.CastVote("p4", VoteInnocent)

		outcome := room.ResolveVoting()
		assert.Nil(t, outcome.Eliminated)
		p0, _ := room.GetPlayer("p0")
		assert.True(t, p0.IsAlive)
	})

	t.Run("no votes eliminates no one", func(t *testing.T) {
		room := votingRoom(t)
		outcome := room.ResolveVoting()
		assert.Nil(t, outcome.Eliminated)
		assert.Equal(t, 0, outcome.Guilty)
		assert.Equal(t, 0, outcome.Innocent)
	})
}

func TestAllAliveVoted(t *testing.T) {
	room := votingRoom(t)
	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		room.CastVote(id, VoteGuilty)
		assert.False(t, room.AllAliveVoted())
	}
	room.CastVote("p4", VoteInnocent)
	assert.True(t, room.AllAliveVoted())
}

func TestCheckGameEnd(t *testing.T) {
	t.Run("town wins when mafia gone", func(t *testing.T) {
		room := nightRoom(t)
		mafia, _ := room.GetPlayer("p0")
		mafia.IsAlive = false

		require.True(t, room.CheckGameEnd())
		assert.Equal(t, PhaseGameOver, room.Phase)
		assert.Equal(t, ResultTown, room.Result)
	})

	t.Run("mafia wins at parity", func(t *testing.T) {
		// 1 mafia vs 4 town; kill town down to one survivor
		room := nightRoom(t)
		for _, id := range []string{"p1", "p2", "p3"} {
			p, _ := room.GetPlayer(id)
			p.IsAlive = false
		}

		require.True(t, room.CheckGameEnd())
		assert.Equal(t, ResultMafia, room.Result)
	})

	t.Run("game continues while mafia outnumbered", func(t *testing.T) {
		room := nightRoom(t)
		p3, _ := room.GetPlayer("p3")
		p3.IsAlive = false

		assert.False(t, room.CheckGameEnd())
		assert.Equal(t, PhaseNight, room.Phase)
		assert.Empty(t, room.Result)
	})
}

func TestLineups(t *testing.T) {
	room := nightRoom(t)
	p3, _ := room.GetPlayer("p3")
	p3.IsAlive = false

	for _, info := range room.Lineup() {
		assert.Empty(t, info.Role)
	}

	for _, info := range room.LineupRevealDead() {
		if info.ID == "p3" {
			assert.Equal(t, RoleCitizen, info.Role)
		} else {
			assert.Empty(t, info.Role)
		}
	}

	for _, info := range room.LineupFull() {
		assert.NotEmpty(t, info.Role)
	}
}

func TestAdvancePhase(t *testing.T) {
	room := newTestRoom(t, 5)

	assert.ErrorIs(t, room.AdvancePhase(PhaseDay), ErrInvalidPhase)
	assert.Equal(t, PhaseLobby, room.Phase)

	require.NoError(t, room.AdvancePhase(PhaseNight))
	require.NoError(t, room.AdvancePhase(PhaseDay))
	assert.ErrorIs(t, room.AdvancePhase(PhaseGameOver), ErrInvalidPhase)
	assert.Equal(t, PhaseDay, room.Phase)
}

func TestPhaseTransitions(t *testing.T) {
	assert.True(t, PhaseLobby.CanTransitionTo(PhaseNight))
	assert.True(t, PhaseNight.CanTransitionTo(PhaseDay))
	assert.True(t, PhaseDay.CanTransitionTo(PhaseVoting))
	assert.True(t, PhaseDay.CanTransitionTo(PhaseNight))
	assert.True(t, PhaseVoting.CanTransitionTo(PhaseNight))
	assert.True(t, PhaseVoting.CanTransitionTo(PhaseGameOver))

	assert.False(t, PhaseLobby.CanTransitionTo(PhaseDay))
	assert.False(t, PhaseGameOver.CanTransitionTo(PhaseNight))
	assert.False(t, PhaseGameOver.CanTransitionTo(PhaseLobby))
}
