package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cannonfall/client/internal/protocol"
)

func threePlayers() []protocol.Player {
	return []protocol.Player{
		{ID: "a", Username: "A"},
		{ID: "b", Username: "B"},
		{ID: "c", Username: "C"},
	}
}

func TestVoteState_TallyAndCounts(t *testing.T) {
	v := NewVoteState([]string{"Classic", "Cracked"}, threePlayers())

	v.ApplyVote("a", "Classic")
	v.ApplyVote("b", "Cracked")
	assert.Equal(t, map[string]int{"Classic": 1, "Cracked": 1}, v.CountsPerMode())

	// Each event overwrites exactly one entry.
	v.ApplyVote("b", "Classic")
	assert.Equal(t, map[string]int{"Classic": 2, "Cracked": 0}, v.CountsPerMode())

	mode, ok := v.Vote("b")
	require.True(t, ok)
	assert.Equal(t, "Classic", mode)
	_, ok = v.Vote("c")
	assert.False(t, ok)
}

func TestVoteState_LocalVotesOnce(t *testing.T) {
	v := NewVoteState([]string{"Classic", "Cracked"}, threePlayers())

	require.NoError(t, v.CastLocal("Classic"))
	assert.True(t, v.HasLocalVoted())

	err := v.CastLocal("Cracked")
	assert.True(t, errors.Is(err, ErrAlreadyVoted))
}

func TestVoteState_RejectsModeOffTheBallot(t *testing.T) {
	v := NewVoteState([]string{"Classic"}, threePlayers())
	err := v.CastLocal("Blitz")
	assert.True(t, errors.Is(err, ErrUnknownMode))
	assert.False(t, v.HasLocalVoted())
}

func TestVoteState_VotersFallBackToAllPlayers(t *testing.T) {
	v := NewVoteState([]string{"Classic"}, threePlayers())
	assert.Len(t, v.Voters(), 3, "nobody voted: the draw runs over everyone")

	v.ApplyVote("c", "Classic")
	v.ApplyVote("a", "Classic")
	voters := v.Voters()
	require.Len(t, voters, 2)
	// Roster order, not vote order.
	assert.Equal(t, "a", voters[0].ID)
	assert.Equal(t, "c", voters[1].ID)
}

func TestRoulette_PhasesRunInOrder(t *testing.T) {
	r := NewRoulette(3)
	require.Equal(t, RouletteAccelerate, r.Phase())

	seen := map[RoulettePhase]bool{}
	var prev RoulettePhase
	for i := 0; i < 100 && r.Spinning(); i++ {
		seen[r.Phase()] = true
		switch {
		case prev == RouletteSteady && r.Phase() == RouletteAccelerate,
			prev == RouletteDecelerate && r.Phase() != RouletteDecelerate:
			t.Fatalf("phase order violated: %s -> %s", prev, r.Phase())
		}
		prev = r.Phase()
		r.Tick(4)
	}
	assert.False(t, r.Spinning(), "roulette never stopped")
	assert.True(t, seen[RouletteAccelerate] && seen[RouletteSteady] && seen[RouletteDecelerate],
		"missing phases: %v", seen)
}

func TestRoulette_IndexCyclesModuloEntries(t *testing.T) {
	r := NewRoulette(5)
	for i := 0; i < 50 && r.Spinning(); i++ {
		r.Tick(3)
		assert.Less(t, r.Index(), 3)
	}
}

func TestRoulette_LandsOnWinnerAfterNaturalStop(t *testing.T) {
	players := threePlayers()
	r := NewRoulette(3)
	for r.Spinning() {
		r.Tick(len(players))
	}
	r.Land(IndexOf(players, "b"))
	assert.Equal(t, 1, r.Index())
	assert.False(t, r.Spinning())
}

func TestRoulette_DeadlinePreemptionStillLandsOnWinner(t *testing.T) {
	players := threePlayers()
	r := NewRoulette(10)

	// Pre-empt two ticks in, deep inside acceleration.
	r.Tick(len(players))
	r.Tick(len(players))
	require.True(t, r.Spinning())

	r.Land(IndexOf(players, "c"))
	assert.Equal(t, 2, r.Index())
	assert.False(t, r.Spinning())

	// Once stopped, ticks are inert.
	_, spinning := r.Tick(len(players))
	assert.False(t, spinning)
	assert.Equal(t, 2, r.Index())
}

func TestRoulette_LandWithUnknownWinnerKeepsFrame(t *testing.T) {
	r := NewRoulette(2)
	r.Tick(3)
	before := r.Index()
	r.Land(IndexOf(threePlayers(), "nobody"))
	assert.Equal(t, before, r.Index(), "unknown winner must not corrupt the frame")
	assert.False(t, r.Spinning())
}

// Ceremony scenario: three players, two vote Classic, the server draws B.
// The final frame must be B's position in the voter list, which excludes C.
func TestDrawCeremony_EndToEnd(t *testing.T) {
	v := NewVoteState([]string{"Classic", "Blitz"}, threePlayers())
	v.ApplyVote("a", "Classic")
	v.ApplyVote("b", "Classic")

	voters := v.Voters()
	require.Len(t, voters, 2)

	r := NewRoulette(4)
	for r.Spinning() {
		r.Tick(len(voters))
	}
	r.Land(IndexOf(voters, "b"))
	assert.Equal(t, 1, r.Index(), "B sits at index 1 of [A, B]")

	mode, ok := v.Vote(voters[r.Index()].ID)
	require.True(t, ok)
	assert.Equal(t, "Classic", mode)
}

func TestSteadyTicks_UsesInjectedRand(t *testing.T) {
	got := SteadyTicks(func(n int) int {
		require.Equal(t, 6, n)
		return 3
	})
	assert.Equal(t, 13, got)
}
