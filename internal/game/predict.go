package game

import "github.com/cannonfall/client/internal/protocol"

// Prediction is a tentative local position computed ahead of server
// confirmation, tagged with the turn it was computed against. It never
// survives into a new turn.
type Prediction struct {
	Pos  protocol.Position
	Turn int
}

// Predictor holds at most one pending prediction for the local player.
// It is a latency-hiding affordance only: the authoritative position always
// wins once the turn advances, with no diffing or carry-forward.
type Predictor struct {
	pred *Prediction
}

// Predict computes the clamped neighbor cell and records it against turn.
func (p *Predictor) Predict(from protocol.Position, dir protocol.Direction, rows, cols, turn int) protocol.Position {
	next := Translate(from, dir, rows, cols)
	p.pred = &Prediction{Pos: next, Turn: turn}
	return next
}

// Observe drops the prediction if the snapshot's turn differs from its tag.
func (p *Predictor) Observe(turn int) {
	if p.pred != nil && p.pred.Turn != turn {
		p.pred = nil
	}
}

func (p *Predictor) Clear() { p.pred = nil }

// Current returns the pending prediction if its tag matches turn.
func (p *Predictor) Current(turn int) (protocol.Position, bool) {
	if p.pred == nil || p.pred.Turn != turn {
		return protocol.Position{}, false
	}
	return p.pred.Pos, true
}

// RenderPosition derives the position to draw for a player: the prediction
// when one is pending for the current turn, the authoritative position
// otherwise. Pure; presentation never mutates core state.
func RenderPosition(auth *protocol.Position, pred *Prediction, turn int) *protocol.Position {
	if pred != nil && pred.Turn == turn {
		pos := pred.Pos
		return &pos
	}
	return auth
}

// Translate moves one cell in dir, clamped to the grid: attempting to leave
// the grid is a no-op translation, not an error.
func Translate(pos protocol.Position, dir protocol.Direction, rows, cols int) protocol.Position {
	next := pos
	switch dir {
	case protocol.DirUp:
		next.Y--
	case protocol.DirDown:
		next.Y++
	case protocol.DirLeft:
		next.X--
	case protocol.DirRight:
		next.X++
	}
	if next.X < 0 || next.X >= cols || next.Y < 0 || next.Y >= rows {
		return pos
	}
	return next
}
