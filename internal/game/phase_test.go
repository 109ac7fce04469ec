package game

import (
	"errors"
	"testing"
)

func findEvent(events []Event, typ EventType) (Event, bool) {
	for _, ev := range events {
		if ev.Type == typ {
			return ev, true
		}
	}
	return Event{}, false
}

func TestMachine_PreGameFromIdle(t *testing.T) {
	m := NewMachine(1)

	events, err := m.ApplyPreGame(10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Phase() != PhasePreGameVote {
		t.Fatalf("phase = %s, want %s", m.Phase(), PhasePreGameVote)
	}
	if _, ok := findEvent(events, EvtPlaceholderSnapshot); !ok {
		t.Error("missing placeholder snapshot event")
	}
	ev, ok := findEvent(events, EvtVoteTimerStart)
	if !ok || ev.Seconds != 10 {
		t.Errorf("vote timer event = %+v, want 10s", ev)
	}

	// A refresh while voting restarts the ceremony instead of erroring.
	if _, err := m.ApplyPreGame(8); err != nil {
		t.Errorf("refresh rejected: %v", err)
	}
}

func TestMachine_FirstSnapshotEntersMove(t *testing.T) {
	m := NewMachine(1)
	_, _ = m.ApplyPreGame(10)

	events := m.ApplySnapshot(1, 5)
	if m.Phase() != PhaseMove {
		t.Fatalf("phase = %s, want %s", m.Phase(), PhaseMove)
	}
	ev, ok := findEvent(events, EvtTurnTimerStart)
	if !ok {
		t.Fatal("missing turn timer event")
	}
	if ev.Seconds != 4 { // 5s duration minus the 1s safety margin
		t.Errorf("turn timer seconds = %d, want 4", ev.Seconds)
	}
}

func TestMachine_TurnTimerMargin(t *testing.T) {
	cases := []struct {
		name     string
		margin   int
		duration int
		want     int
	}{
		{name: "default margin", margin: 1, duration: 5, want: 4},
		{name: "wider margin", margin: 2, duration: 5, want: 3},
		{name: "never below one second", margin: 1, duration: 1, want: 1},
		{name: "margin exceeds duration", margin: 5, duration: 3, want: 1},
		{name: "no margin", margin: 0, duration: 5, want: 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine(tc.margin)
			events := m.ApplySnapshot(1, tc.duration)
			ev, ok := findEvent(events, EvtTurnTimerStart)
			if !ok {
				t.Fatal("missing turn timer event")
			}
			if ev.Seconds != tc.want {
				t.Errorf("seconds = %d, want %d", ev.Seconds, tc.want)
			}
		})
	}
}

func TestMachine_SubmitOncePerTurn(t *testing.T) {
	m := NewMachine(1)
	m.ApplySnapshot(1, 5)

	if !m.AcceptingInput() {
		t.Fatal("should accept input in move phase")
	}
	if err := m.SubmitAction(); err != nil {
		t.Fatalf("first submit rejected: %v", err)
	}
	if m.Phase() != PhaseWait {
		t.Fatalf("phase = %s, want %s", m.Phase(), PhaseWait)
	}
	if err := m.SubmitAction(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("second submit err = %v, want %v", err, ErrWrongPhase)
	}

	// A within-turn update must not reset the submitted flag.
	if events := m.ApplySnapshot(1, 5); events != nil {
		t.Errorf("within-turn snapshot produced events: %+v", events)
	}
	if !m.Submitted() {
		t.Error("within-turn snapshot reset the submitted flag")
	}

	// A strictly greater turn does.
	events := m.ApplySnapshot(2, 5)
	if _, ok := findEvent(events, EvtNewTurn); !ok {
		t.Error("missing new turn event")
	}
	if m.Submitted() {
		t.Error("submitted flag survived a new turn")
	}
	if !m.AcceptingInput() {
		t.Error("should accept input again on the new turn")
	}
}

func TestMachine_SubmittedOnlyBetweenSubmitAndNextTurn(t *testing.T) {
	m := NewMachine(1)

	// Non-decreasing snapshot sequence interleaved with one submission.
	m.ApplySnapshot(1, 5)
	if m.Submitted() {
		t.Fatal("submitted before any submission")
	}
	_ = m.SubmitAction()
	m.ApplySnapshot(1, 5) // same turn: still submitted
	if !m.Submitted() {
		t.Fatal("flag dropped inside the turn")
	}
	m.ApplySnapshot(3, 5) // strictly greater: cleared
	if m.Submitted() {
		t.Fatal("flag held past a greater turn")
	}
}

func TestMachine_TurnExpiryClosesInputOnly(t *testing.T) {
	m := NewMachine(1)
	m.ApplySnapshot(1, 5)

	m.TurnExpired()
	if m.Phase() != PhaseMove {
		t.Errorf("phase = %s, want %s (server owns the cutoff)", m.Phase(), PhaseMove)
	}
	if m.AcceptingInput() {
		t.Error("input still offered after local expiry")
	}
	if err := m.SubmitAction(); err == nil {
		t.Error("submit accepted after local expiry")
	}

	// The next turn reopens input.
	m.ApplySnapshot(2, 5)
	if !m.AcceptingInput() {
		t.Error("input not reopened on the next turn")
	}
}

func TestMachine_EndedIsTerminal(t *testing.T) {
	m := NewMachine(1)
	m.ApplySnapshot(1, 5)

	events := m.ApplyEnded()
	if _, ok := findEvent(events, EvtMatchEnded); !ok {
		t.Fatal("missing match ended event")
	}
	if m.Phase() != PhaseEnded {
		t.Fatalf("phase = %s, want %s", m.Phase(), PhaseEnded)
	}

	if events := m.ApplySnapshot(2, 5); events != nil {
		t.Errorf("snapshot after end produced events: %+v", events)
	}
	if err := m.SubmitAction(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("submit after end err = %v, want %v", err, ErrWrongPhase)
	}
	if _, err := m.ApplyPreGame(10); !errors.Is(err, ErrMatchEnded) {
		t.Errorf("pregame after end err = %v, want %v", err, ErrMatchEnded)
	}
}
