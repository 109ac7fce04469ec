package game

import "errors"

var ErrWrongPhase = errors.New("action not allowed in this phase")
var ErrAlreadySubmitted = errors.New("already submitted this turn")
var ErrMatchEnded = errors.New("match already ended")

// Phase is the turn-local stage that gates which input is currently accepted.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhasePreGameVote Phase = "pregame_vote"
	PhaseMove        Phase = "move"
	PhaseWait        Phase = "wait"
	PhaseEnded       Phase = "ended"
)

// EventType names a side effect the owning session must run after a
// transition. The machine itself never touches timers or sockets.
type EventType string

const (
	// EvtPlaceholderSnapshot: synthesize an all-solid grid so the board can
	// render before the first authoritative snapshot.
	EvtPlaceholderSnapshot EventType = "PlaceholderSnapshot"
	EvtVoteTimerStart      EventType = "VoteTimerStart"
	EvtTurnTimerStart      EventType = "TurnTimerStart"
	EvtNewTurn             EventType = "NewTurn"
	EvtMatchEnded          EventType = "MatchEnded"
)

type Event struct {
	Type    EventType
	Seconds int
	Turn    int
}

// Machine owns the per-turn lifecycle. It is the only writer of the current
// phase; the predictor and the vote resolver only read it.
type Machine struct {
	phase     Phase
	lastTurn  int
	submitted bool
	expired   bool
	marginSec int
}

// NewMachine creates an idle machine. marginSec is subtracted from every turn
// duration before the local timer starts, so the client's countdown never
// outlasts the server's authoritative cutoff.
func NewMachine(marginSec int) *Machine {
	if marginSec < 0 {
		marginSec = 0
	}
	return &Machine{phase: PhaseIdle, marginSec: marginSec}
}

func (m *Machine) Phase() Phase    { return m.phase }
func (m *Machine) Turn() int       { return m.lastTurn }
func (m *Machine) Submitted() bool { return m.submitted }

// AcceptingInput reports whether a move or shot may be submitted right now.
// False once the local turn timer has expired, even though the phase stays
// Move: the server owns the hard cutoff, the client only stops offering.
func (m *Machine) AcceptingInput() bool {
	return m.phase == PhaseMove && !m.submitted && !m.expired
}

// ApplyPreGame handles pre-match configuration. A repeat while already voting
// refreshes the ceremony (the server re-sends it when the phase is refreshed).
func (m *Machine) ApplyPreGame(deadlineSecs int) ([]Event, error) {
	switch m.phase {
	case PhaseIdle, PhasePreGameVote:
	case PhaseEnded:
		return nil, ErrMatchEnded
	default:
		return nil, ErrWrongPhase
	}
	m.phase = PhasePreGameVote
	return []Event{
		{Type: EvtPlaceholderSnapshot},
		{Type: EvtVoteTimerStart, Seconds: deadlineSecs},
	}, nil
}

// ApplySnapshot handles an authoritative turn snapshot. A strictly greater
// turn number starts a new turn: the submitted flag resets and the turn timer
// restarts with the safety margin applied. An equal turn number is a
// within-turn update and changes nothing here.
func (m *Machine) ApplySnapshot(turn, turnDurationSecs int) []Event {
	if m.phase == PhaseEnded {
		return nil
	}
	if turn <= m.lastTurn && m.phase != PhaseIdle && m.phase != PhasePreGameVote {
		return nil
	}
	m.phase = PhaseMove
	m.lastTurn = turn
	m.submitted = false
	m.expired = false
	secs := max(1, turnDurationSecs-m.marginSec)
	return []Event{
		{Type: EvtNewTurn, Turn: turn},
		{Type: EvtTurnTimerStart, Seconds: secs},
	}
}

// SubmitAction marks the local player's single action for this turn.
// Re-entrant submissions are rejected before anything reaches the network.
func (m *Machine) SubmitAction() error {
	if m.phase != PhaseMove {
		return ErrWrongPhase
	}
	if m.submitted {
		return ErrAlreadySubmitted
	}
	if m.expired {
		return ErrWrongPhase
	}
	m.submitted = true
	m.phase = PhaseWait
	return nil
}

// TurnExpired records that the local turn timer hit zero. The phase is left
// unchanged; only input affordances close.
func (m *Machine) TurnExpired() {
	if m.phase == PhaseMove || m.phase == PhaseWait {
		m.expired = true
	}
}

// ApplyEnded is terminal from any phase.
func (m *Machine) ApplyEnded() []Event {
	m.phase = PhaseEnded
	return []Event{{Type: EvtMatchEnded}}
}
