package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cannonfall/client/internal/config"
	"github.com/cannonfall/client/internal/game"
	"github.com/cannonfall/client/internal/httpapi"
	"github.com/cannonfall/client/internal/lobby"
	"github.com/cannonfall/client/internal/protocol"
	"github.com/cannonfall/client/internal/session"
	"github.com/cannonfall/client/internal/ws"
)

// viewers hands the status API whatever stage is currently live.
type viewers struct {
	mu   sync.Mutex
	mm   *lobby.Synchronizer
	sess *game.Session
}

func (v *viewers) lobbyView() (lobby.View, bool) {
	v.mu.Lock()
	s := v.mm
	v.mu.Unlock()
	if s == nil {
		return lobby.View{}, false
	}
	return s.View(), true
}

func (v *viewers) gameView() (game.View, bool) {
	v.mu.Lock()
	s := v.sess
	v.mu.Unlock()
	if s == nil {
		return game.View{}, false
	}
	return s.View(), true
}

func main() {
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	store := session.NewStore(cfg.SessionFile)
	id, err := store.Load()
	if errors.Is(err, session.ErrNoIdentity) {
		// The only fatal startup condition: identity comes from the login
		// flow, which lives outside this client.
		log.Fatal("no session identity found; complete the login flow first")
	}
	if err != nil {
		log.Fatalw("loading session", "err", err)
	}

	ctx := context.Background()
	clock := clockwork.NewRealClock()

	v := &viewers{}
	go func() {
		log.Infow("status api listening", "addr", cfg.StatusAddr)
		if err := http.ListenAndServe(cfg.StatusAddr, httpapi.SetupRoutes(v.lobbyView, v.gameView)); err != nil {
			log.Warnw("status api stopped", "err", err)
		}
	}()

	lines := make(chan string, 8)
	go readInput(lines)

	matchID := runMatchmaking(ctx, cfg, id, clock, log, v, lines)
	if _, err := uuid.Parse(matchID); err != nil {
		log.Fatalw("server announced a malformed match id", "match_id", matchID)
	}
	winner := runGame(ctx, cfg, id, clock, log, v, lines, matchID)
	log.Infow("match concluded", "winner", winner)
}

func runMatchmaking(ctx context.Context, cfg config.Config, id session.Identity, clock clockwork.Clock, log *zap.SugaredLogger, v *viewers, lines <-chan string) string {
	conn, err := ws.Dial(ctx, log, cfg.ServerURL, "/ws/matchmaking", id.WalletID, id.Username)
	if err != nil {
		log.Fatalw("matchmaking dial failed", "err", err)
	}

	started := make(chan string, 1)
	mm := lobby.NewSynchronizer(ctx, conn, id.WalletID, clock, log, cfg.TickPeriod, func(matchID string) {
		started <- matchID
	})
	v.mu.Lock()
	v.mm = mm
	v.mu.Unlock()

	go conn.ReadLoop(
		func(m protocol.Inbound) { mm.Inbox() <- lobby.FromServer{Msg: m} },
		func(err error) { mm.Inbox() <- lobby.Disconnected{Err: err} },
	)

	log.Infow("in matchmaking", "wallet", id.WalletID, "username", id.Username)
	for {
		select {
		case matchID := <-started:
			conn.Close()
			mm.Inbox() <- lobby.Shutdown{}
			v.mu.Lock()
			v.mm = nil
			v.mu.Unlock()
			return matchID

		case line := <-lines:
			switch strings.TrimSpace(line) {
			case "pay":
				mm.Inbox() <- lobby.Pay{}
			case "cancel":
				mm.Inbox() <- lobby.CancelPayment{}
			default:
				log.Info("matchmaking commands: pay | cancel")
			}
		}
	}
}

func runGame(ctx context.Context, cfg config.Config, id session.Identity, clock clockwork.Clock, log *zap.SugaredLogger, v *viewers, lines <-chan string, matchID string) string {
	conn, err := ws.Dial(ctx, log, cfg.ServerURL, "/ws/game/"+matchID, id.WalletID, id.Username)
	if err != nil {
		log.Fatalw("game dial failed", "err", err)
	}
	defer conn.Close()

	ended := make(chan string, 1)
	sess := game.NewSession(ctx, conn, id.WalletID, clock, log,
		game.Config{TurnMarginSec: cfg.TurnMarginSec, TickPeriod: cfg.TickPeriod},
		func(winner string) { ended <- winner },
	)

	go conn.ReadLoop(
		func(m protocol.Inbound) { sess.Inbox() <- game.FromServer{Msg: m} },
		func(err error) { sess.Inbox() <- game.Disconnected{Err: err} },
	)

	log.Infow("joined game", "match_id", matchID)
	for {
		select {
		case winner := <-ended:
			sess.Inbox() <- game.Shutdown{}
			return winner

		case line := <-lines:
			cmd, ok := parseCommand(line)
			if !ok {
				log.Info("game commands: move up|down|left|right|stay | shoot X Y | vote MODE")
				continue
			}
			sess.Inbox() <- game.Input{Cmd: cmd}
		}
	}
}

// parseCommand turns a console line into an outbound command. The session
// still applies its own phase guards before anything hits the wire.
func parseCommand(line string) (protocol.Outbound, bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil, false
	}
	switch fields[0] {
	case "move":
		if len(fields) != 2 {
			return nil, false
		}
		switch fields[1] {
		case "up":
			return protocol.MoveCommand{Direction: protocol.DirUp}, true
		case "down":
			return protocol.MoveCommand{Direction: protocol.DirDown}, true
		case "left":
			return protocol.MoveCommand{Direction: protocol.DirLeft}, true
		case "right":
			return protocol.MoveCommand{Direction: protocol.DirRight}, true
		case "stay":
			return protocol.MoveCommand{Direction: protocol.DirStay}, true
		}
		return nil, false
	case "shoot":
		if len(fields) != 3 {
			return nil, false
		}
		x, errX := strconv.Atoi(fields[1])
		y, errY := strconv.Atoi(fields[2])
		if errX != nil || errY != nil {
			return nil, false
		}
		return protocol.ShootCommand{X: x, Y: y}, true
	case "vote":
		if len(fields) != 2 {
			return nil, false
		}
		return protocol.CastVoteCommand{Mode: fields[1]}, true
	}
	return nil, false
}

func readInput(out chan<- string) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out <- sc.Text()
	}
}
