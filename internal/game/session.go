package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cannonfall/client/internal/countdown"
	"github.com/cannonfall/client/internal/protocol"
)

// Sender is the outbound half of the connection. Sends are fire-and-forget.
type Sender interface {
	Send(protocol.Outbound) error
}

type Msg interface{ isSessionMsg() }

// FromServer delivers one decoded inbound message, in arrival order.
type FromServer struct{ Msg protocol.Inbound }

// Input is a local player intent: move, shoot, or vote.
type Input struct{ Cmd protocol.Outbound }

type GetView struct{ Reply chan View }

// Disconnected reports the socket closing. All timers are torn down; the
// session keeps answering GetView so the status stays visible.
type Disconnected struct{ Err error }

type Shutdown struct{}

func (FromServer) isSessionMsg()   {}
func (Input) isSessionMsg()        {}
func (GetView) isSessionMsg()      {}
func (Disconnected) isSessionMsg() {}
func (Shutdown) isSessionMsg()     {}

// Config holds the session tunables.
type Config struct {
	// TurnMarginSec shrinks every local turn timer below the server's
	// duration, so the local countdown never outlasts the authoritative
	// cutoff.
	TurnMarginSec int
	TickPeriod    time.Duration
	// RandInt lets tests pin the roulette's steady duration.
	RandInt func(n int) int
}

// Session is the per-match client actor. Every state transition happens on
// its single loop goroutine, triggered by a network message, a timer event,
// or a user input.
type Session struct {
	inbox  chan Msg
	timers chan countdown.Event

	conn  Sender
	log   *zap.SugaredLogger
	clock clockwork.Clock
	cfg   Config

	me string // local player id (wallet)

	machine   *Machine
	predictor Predictor
	vote      *VoteState

	state        *protocol.GameState
	gridRows     int
	gridCols     int
	turnDuration int
	connStatus   string
	lastError    string
	winner       string

	voteTimer *countdown.Countdown
	turnTimer *countdown.Countdown

	roulette    *Roulette
	rouletteT   clockwork.Timer
	highlightT  clockwork.Timer
	chosenBy    string
	chosenMode  string
	landed      bool
	highlighted bool

	onEnded func(winner string)

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession starts the actor loop. me is the local player's wallet id;
// onEnded fires once on match conclusion, after which no input is accepted.
func NewSession(parent context.Context, conn Sender, me string, clock clockwork.Clock, log *zap.SugaredLogger, cfg Config, onEnded func(winner string)) *Session {
	ctx, cancel := context.WithCancel(parent)
	if cfg.RandInt == nil {
		cfg.RandInt = rand.Intn
	}
	timers := make(chan countdown.Event, 16)
	s := &Session{
		inbox:      make(chan Msg, 64),
		timers:     timers,
		conn:       conn,
		log:        log,
		clock:      clock,
		cfg:        cfg,
		me:         me,
		machine:    NewMachine(cfg.TurnMarginSec),
		connStatus: "connected",
		voteTimer:  countdown.New("vote", clock, cfg.TickPeriod, timers),
		turnTimer:  countdown.New("turn", clock, cfg.TickPeriod, timers),
		onEnded:    onEnded,
		ctx:        ctx,
		cancel:     cancel,
	}
	go s.loop()
	return s
}

// Inbox exposes the actor mailbox to the ws layer and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// View fetches the derived view state without data races.
func (s *Session) View() View {
	reply := make(chan View, 1)
	s.inbox <- GetView{Reply: reply}
	return <-reply
}

func (s *Session) loop() {
	for {
		rouletteC, highlightC := s.animChans()
		select {
		case <-s.ctx.Done():
			s.teardown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case FromServer:
				s.handleServer(msg.Msg)
			case Input:
				s.handleInput(msg.Cmd)
			case GetView:
				msg.Reply <- s.view()
			case Disconnected:
				s.connStatus = "disconnected"
				s.teardown()
			case Shutdown:
				s.teardown()
				s.cancel()
				return
			}

		case ev := <-s.timers:
			s.handleTimer(ev)

		case <-rouletteC:
			s.rouletteT = nil
			s.rouletteTick()

		case <-highlightC:
			s.highlightT = nil
			s.highlighted = true
		}
	}
}

// animChans returns nil channels when no animation timer is armed, so the
// select arms stay inert.
func (s *Session) animChans() (<-chan time.Time, <-chan time.Time) {
	var rc, hc <-chan time.Time
	if s.rouletteT != nil {
		rc = s.rouletteT.Chan()
	}
	if s.highlightT != nil {
		hc = s.highlightT.Chan()
	}
	return rc, hc
}

func (s *Session) handleServer(in protocol.Inbound) {
	switch msg := in.(type) {
	case protocol.PreGameData:
		events, err := s.machine.ApplyPreGame(msg.DeadlineSecs)
		if err != nil {
			s.log.Debugw("dropping pregame data", "err", err)
			return
		}
		s.gridRows = msg.GridRow
		s.gridCols = msg.GridCol
		s.vote = NewVoteState(msg.Modes, msg.Players)
		s.chosenBy, s.chosenMode = "", ""
		s.landed, s.highlighted = false, false
		s.startRoulette()
		s.runEvents(events, msg.Players)

	case protocol.ModeVoteUpdate:
		if s.vote == nil {
			return
		}
		s.vote.ApplyVote(msg.PlayerID, msg.Mode)

	case protocol.ModeChosen:
		s.chosenBy = msg.ChosenBy
		s.chosenMode = msg.Mode
		if s.roulette == nil || s.roulette.Spinning() {
			return
		}
		if s.landed {
			// The deadline already froze the frame; snap it onto the winner.
			s.roulette.Land(IndexOf(s.vote.Voters(), msg.ChosenBy))
			return
		}
		s.land()

	case protocol.StateUpdate:
		events := s.machine.ApplySnapshot(msg.State.Turn, msg.TurnDuration)
		st := msg.State
		s.state = &st
		s.turnDuration = msg.TurnDuration
		if len(st.Grid) > 0 {
			s.gridRows = len(st.Grid)
			s.gridCols = len(st.Grid[0])
		}
		s.predictor.Observe(st.Turn)
		s.runEvents(events, nil)

	case protocol.GameEnded:
		events := s.machine.ApplyEnded()
		s.winner = msg.Winner
		s.runEvents(events, nil)

	case protocol.SessionKicked:
		s.log.Warnw("session kicked", "reason", msg.Reason)
		s.connStatus = "kicked"
		s.lastError = msg.Reason
		s.teardown()

	case protocol.ServerError:
		// Surfaced as a notification; never alters phase state.
		s.lastError = msg.Message

	default:
		s.log.Debugw("unrouted message", "type", in)
	}
}

func (s *Session) runEvents(events []Event, roster []protocol.Player) {
	for _, ev := range events {
		switch ev.Type {
		case EvtPlaceholderSnapshot:
			s.state = placeholderState(s.gridRows, s.gridCols, roster)
		case EvtVoteTimerStart:
			s.voteTimer.Start(ev.Seconds)
		case EvtTurnTimerStart:
			s.turnTimer.Start(ev.Seconds)
		case EvtNewTurn:
			s.voteTimer.Cancel()
			s.stopAnimation()
		case EvtMatchEnded:
			s.teardown()
			if s.onEnded != nil {
				s.onEnded(s.winner)
				s.onEnded = nil
			}
		}
	}
}

func (s *Session) handleInput(cmd protocol.Outbound) {
	switch c := cmd.(type) {
	case protocol.MoveCommand:
		if !s.machine.AcceptingInput() {
			return
		}
		if s.state != nil {
			if me, ok := s.state.PlayerByID(s.me); ok && me.Pos != nil {
				s.predictor.Predict(*me.Pos, c.Direction, s.gridRows, s.gridCols, s.machine.Turn())
			}
		}
		s.send(c)
		_ = s.machine.SubmitAction()

	case protocol.ShootCommand:
		if !s.machine.AcceptingInput() {
			return
		}
		s.send(c)
		_ = s.machine.SubmitAction()

	case protocol.CastVoteCommand:
		if s.machine.Phase() != PhasePreGameVote || s.vote == nil {
			return
		}
		if err := s.vote.CastLocal(c.Mode); err != nil {
			// Guard violation: rejected locally, no round-trip.
			return
		}
		s.send(c)

	default:
		s.log.Debugw("unroutable input", "cmd", cmd)
	}
}

func (s *Session) send(cmd protocol.Outbound) {
	if err := s.conn.Send(cmd); err != nil {
		s.log.Warnw("send failed", "err", err)
	}
}

func (s *Session) handleTimer(ev countdown.Event) {
	switch {
	case s.voteTimer.Owns(ev):
		if ev.Expired {
			s.voteTimer.Cancel()
			// Hard pre-emption: the deadline always wins over the animation.
			if s.roulette != nil && s.roulette.Spinning() {
				s.land()
			}
		}
	case s.turnTimer.Owns(ev):
		if ev.Expired {
			s.turnTimer.Cancel()
			s.machine.TurnExpired()
		}
	}
	// Render ticks carry no state: the view recomputes remaining time from
	// the countdown's absolute deadline.
}

func (s *Session) startRoulette() {
	s.stopAnimation()
	s.roulette = NewRoulette(SteadyTicks(s.cfg.RandInt))
	s.rouletteT = s.clock.NewTimer(rouletteStartInterval)
}

func (s *Session) rouletteTick() {
	if s.roulette == nil || !s.roulette.Spinning() {
		return
	}
	entries := s.vote.Voters()
	next, spinning := s.roulette.Tick(len(entries))
	if !spinning {
		if s.chosenBy != "" {
			s.land()
		}
		// Otherwise hold the last frame until the server designates the
		// winner; ModeChosen lands it.
		return
	}
	s.rouletteT = s.clock.NewTimer(next)
}

// land force-sets the roulette onto the server-designated player and arms the
// highlight delay. Idempotent.
func (s *Session) land() {
	if s.roulette == nil || s.landed {
		return
	}
	if s.rouletteT != nil {
		s.rouletteT.Stop()
		s.rouletteT = nil
	}
	s.roulette.Land(IndexOf(s.vote.Voters(), s.chosenBy))
	s.landed = true
	s.highlightT = s.clock.NewTimer(HighlightDelay)
}

func (s *Session) stopAnimation() {
	if s.rouletteT != nil {
		s.rouletteT.Stop()
		s.rouletteT = nil
	}
	if s.highlightT != nil {
		s.highlightT.Stop()
		s.highlightT = nil
	}
	s.roulette = nil
}

// teardown deterministically stops every active ticker. Leaking one past
// connection teardown is a defect.
func (s *Session) teardown() {
	s.voteTimer.Cancel()
	s.turnTimer.Cancel()
	s.stopAnimation()
}

func placeholderState(rows, cols int, roster []protocol.Player) *protocol.GameState {
	grid := make([][]protocol.Cell, rows)
	for y := range grid {
		grid[y] = make([]protocol.Cell, cols)
		for x := range grid[y] {
			grid[y][x] = protocol.CellSolid
		}
	}
	players := make([]protocol.Player, len(roster))
	for i, p := range roster {
		players[i] = protocol.Player{ID: p.ID, Username: p.Username, IsAlive: true}
	}
	return &protocol.GameState{
		Grid:        grid,
		Players:     players,
		Cannonballs: []protocol.Cannonball{},
		Turn:        0,
	}
}
