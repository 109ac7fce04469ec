// Package lobby reconciles the matchmaking rosters pushed by the server with
// the local payment intent and the start countdown.
package lobby

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cannonfall/client/internal/countdown"
	"github.com/cannonfall/client/internal/protocol"
)

// Sender is the outbound half of the matchmaking connection.
type Sender interface {
	Send(protocol.Outbound) error
}

type Msg interface{ isLobbyMsg() }

// FromServer delivers one decoded inbound message, in arrival order.
type FromServer struct{ Msg protocol.Inbound }

// Pay requests entry into the paid roster. Fire-and-forget: the paid flag only
// flips when a roster update confirms membership.
type Pay struct{}

// CancelPayment requests a return to the waiting roster. Same contract as Pay.
type CancelPayment struct{}

type GetState struct{ Reply chan View }

type Disconnected struct{ Err error }

type Shutdown struct{}

func (FromServer) isLobbyMsg()    {}
func (Pay) isLobbyMsg()           {}
func (CancelPayment) isLobbyMsg() {}
func (GetState) isLobbyMsg()      {}
func (Disconnected) isLobbyMsg()  {}
func (Shutdown) isLobbyMsg()      {}

// View is the derived lobby state. IsPaid and IsConnected are membership
// tests against the freshly received lists, never tracked independently.
type View struct {
	LobbyPlayers     []protocol.Player `json:"lobby_players"`
	ReadyPlayers     []protocol.Player `json:"ready_players"`
	IsPaid           bool              `json:"is_paid"`
	IsConnected      bool              `json:"is_connected"`
	CountdownActive  bool              `json:"countdown_active"`
	SecondsRemaining int               `json:"seconds_remaining"`
	ConnStatus       string            `json:"conn_status"`
	LastError        string            `json:"last_error,omitempty"`
	MatchID          string            `json:"match_id,omitempty"`
}

// Synchronizer is the matchmaking actor. All transitions happen on its loop
// goroutine.
type Synchronizer struct {
	inbox  chan Msg
	timers chan countdown.Event

	conn  Sender
	log   *zap.SugaredLogger
	clock clockwork.Clock

	me string // local player id (wallet)

	lobbyPlayers []protocol.Player
	readyPlayers []protocol.Player
	cd           *countdown.Countdown
	connStatus   string
	lastError    string
	matchID      string

	onStarted func(matchID string)

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSynchronizer starts the actor loop. onStarted fires once when the server
// announces the match; the caller closes this connection and routes to the
// game session.
func NewSynchronizer(parent context.Context, conn Sender, me string, clock clockwork.Clock, log *zap.SugaredLogger, tickPeriod time.Duration, onStarted func(matchID string)) *Synchronizer {
	ctx, cancel := context.WithCancel(parent)
	timers := make(chan countdown.Event, 16)
	s := &Synchronizer{
		inbox:      make(chan Msg, 64),
		timers:     timers,
		conn:       conn,
		log:        log,
		clock:      clock,
		me:         me,
		cd:         countdown.New("lobby", clock, tickPeriod, timers),
		connStatus: "connected",
		onStarted:  onStarted,
		ctx:        ctx,
		cancel:     cancel,
	}
	go s.loop()
	return s
}

func (s *Synchronizer) Inbox() chan<- Msg { return s.inbox }

// View fetches the derived lobby state without data races.
func (s *Synchronizer) View() View {
	reply := make(chan View, 1)
	s.inbox <- GetState{Reply: reply}
	return <-reply
}

func (s *Synchronizer) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.cd.Cancel()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case FromServer:
				s.handleServer(msg.Msg)
			case Pay:
				s.send(protocol.PayCommand{})
			case CancelPayment:
				s.send(protocol.CancelPaymentCommand{})
			case GetState:
				msg.Reply <- s.view()
			case Disconnected:
				s.connStatus = "disconnected"
				s.cd.Cancel()
				s.lobbyPlayers, s.readyPlayers = nil, nil
			case Shutdown:
				s.cd.Cancel()
				s.cancel()
				return
			}

		case ev := <-s.timers:
			if s.cd.Owns(ev) && ev.Expired {
				s.cd.Cancel()
			}
		}
	}
}

func (s *Synchronizer) handleServer(in protocol.Inbound) {
	switch msg := in.(type) {
	case protocol.RosterUpdate:
		// Full replacement of both lists on every update.
		s.lobbyPlayers = msg.LobbyPlayers
		s.readyPlayers = msg.ReadyPlayers
		if msg.CountdownActive && msg.CountdownRemaining != nil {
			s.cd.Start(*msg.CountdownRemaining)
		} else {
			s.cd.Cancel()
		}

	case protocol.GameStarted:
		s.cd.Cancel()
		s.matchID = msg.GameID
		s.connStatus = "starting"
		if s.onStarted != nil {
			s.onStarted(msg.GameID)
			s.onStarted = nil
		}

	case protocol.ServerError:
		s.lastError = msg.Message

	default:
		s.log.Debugw("unrouted message", "type", in)
	}
}

func (s *Synchronizer) send(cmd protocol.Outbound) {
	if err := s.conn.Send(cmd); err != nil {
		s.log.Warnw("send failed", "err", err)
	}
}

func (s *Synchronizer) view() View {
	return View{
		LobbyPlayers:     s.lobbyPlayers,
		ReadyPlayers:     s.readyPlayers,
		IsPaid:           contains(s.readyPlayers, s.me),
		IsConnected:      contains(s.lobbyPlayers, s.me),
		CountdownActive:  s.cd.Active(),
		SecondsRemaining: s.cd.Remaining(),
		ConnStatus:       s.connStatus,
		LastError:        s.lastError,
		MatchID:          s.matchID,
	}
}

func contains(players []protocol.Player, id string) bool {
	for _, p := range players {
		if p.ID == id {
			return true
		}
	}
	return false
}
