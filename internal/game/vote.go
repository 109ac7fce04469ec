package game

import (
	"errors"
	"time"

	"github.com/cannonfall/client/internal/protocol"
)

var ErrAlreadyVoted = errors.New("already voted")
var ErrUnknownMode = errors.New("mode not on the ballot")

// VoteState aggregates per-player vote events into a tally. Counts per mode
// are derived on demand, never stored.
type VoteState struct {
	Modes      []string
	Players    []protocol.Player
	votes      map[string]string
	localVoted bool
}

func NewVoteState(modes []string, players []protocol.Player) *VoteState {
	return &VoteState{
		Modes:   modes,
		Players: players,
		votes:   make(map[string]string, len(players)),
	}
}

// ApplyVote records one player's vote. Each event overwrites exactly one
// entry; the server may legitimately re-send a vote.
func (v *VoteState) ApplyVote(playerID, mode string) {
	v.votes[playerID] = mode
}

// CastLocal validates the local player's vote before it ever reaches the
// network. At most one vote per player.
func (v *VoteState) CastLocal(mode string) error {
	if v.localVoted {
		return ErrAlreadyVoted
	}
	valid := false
	for _, m := range v.Modes {
		if m == mode {
			valid = true
			break
		}
	}
	if !valid {
		return ErrUnknownMode
	}
	v.localVoted = true
	return nil
}

func (v *VoteState) HasLocalVoted() bool { return v.localVoted }

// Vote returns the recorded mode for a player, if any.
func (v *VoteState) Vote(playerID string) (string, bool) {
	mode, ok := v.votes[playerID]
	return mode, ok
}

// Votes returns a copy of the tally.
func (v *VoteState) Votes() map[string]string {
	out := make(map[string]string, len(v.votes))
	for id, mode := range v.votes {
		out[id] = mode
	}
	return out
}

// CountsPerMode recomputes the per-mode counts from the tally.
func (v *VoteState) CountsPerMode() map[string]int {
	counts := make(map[string]int, len(v.Modes))
	for _, m := range v.Modes {
		counts[m] = 0
	}
	for _, mode := range v.votes {
		counts[mode]++
	}
	return counts
}

// Voters returns the players who voted, in roster order. The draw runs over
// this list, falling back to every player when nobody voted.
func (v *VoteState) Voters() []protocol.Player {
	var voted []protocol.Player
	for _, p := range v.Players {
		if _, ok := v.votes[p.ID]; ok {
			voted = append(voted, p)
		}
	}
	if len(voted) == 0 {
		return v.Players
	}
	return voted
}

// Roulette cadence. Matches the casino overlay: start slow, accelerate to a
// floor, hold for a randomized stretch, then decelerate until the stop
// threshold is crossed.
const (
	rouletteStartInterval = 260 * time.Millisecond
	rouletteFloorInterval = 100 * time.Millisecond
	rouletteAccelStep     = 20 * time.Millisecond
	rouletteDecelStep     = 35 * time.Millisecond
	rouletteStopThreshold = 420 * time.Millisecond

	rouletteSteadyMin    = 10
	rouletteSteadyJitter = 6

	// HighlightDelay separates landing on the winner from highlighting them.
	HighlightDelay = 500 * time.Millisecond
)

type RoulettePhase string

const (
	RouletteAccelerate RoulettePhase = "accelerate"
	RouletteSteady     RoulettePhase = "steady"
	RouletteDecelerate RoulettePhase = "decelerate"
	RouletteStopped    RoulettePhase = "stopped"
)

// Roulette drives the converging draw animation: a cyclic index over the
// voting players. The cadence is cosmetic; landing exactly on the designated
// winner is mandatory and enforced by Land, which both natural stops and
// deadline pre-emption go through.
type Roulette struct {
	index      int
	phase      RoulettePhase
	interval   time.Duration
	steadyLeft int
}

// NewRoulette starts in the accelerate phase. steadyTicks is how long the
// floor cadence holds; callers randomize it so the stopping point is not
// visually predictable.
func NewRoulette(steadyTicks int) *Roulette {
	if steadyTicks < 1 {
		steadyTicks = 1
	}
	return &Roulette{
		phase:      RouletteAccelerate,
		interval:   rouletteStartInterval,
		steadyLeft: steadyTicks,
	}
}

// SteadyTicks picks the randomized steady duration for a fresh roulette.
func SteadyTicks(randInt func(n int) int) int {
	return rouletteSteadyMin + randInt(rouletteSteadyJitter)
}

func (r *Roulette) Index() int           { return r.index }
func (r *Roulette) Phase() RoulettePhase { return r.phase }
func (r *Roulette) Spinning() bool       { return r.phase != RouletteStopped }

// Tick advances the cyclic index over n entries and returns the delay before
// the next tick. spinning=false means the deceleration crossed the stop
// threshold and the caller should land the result.
func (r *Roulette) Tick(n int) (next time.Duration, spinning bool) {
	if r.phase == RouletteStopped || n <= 0 {
		return 0, false
	}
	r.index = (r.index + 1) % n

	switch r.phase {
	case RouletteAccelerate:
		r.interval -= rouletteAccelStep
		if r.interval <= rouletteFloorInterval {
			r.interval = rouletteFloorInterval
			r.phase = RouletteSteady
		}
	case RouletteSteady:
		r.steadyLeft--
		if r.steadyLeft <= 0 {
			r.phase = RouletteDecelerate
		}
	case RouletteDecelerate:
		r.interval += rouletteDecelStep
		if r.interval > rouletteStopThreshold {
			r.phase = RouletteStopped
			return 0, false
		}
	}
	return r.interval, true
}

// Land force-sets the index and stops the spin. Called on natural stop and on
// deadline pre-emption alike, so the final frame is always the winner.
func (r *Roulette) Land(idx int) {
	if idx >= 0 {
		r.index = idx
	}
	r.phase = RouletteStopped
}

// IndexOf locates a player in the draw list; -1 if absent.
func IndexOf(players []protocol.Player, id string) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
