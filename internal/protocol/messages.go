package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown action")

// envelope is the wire form of every message in both directions:
// a string discriminant plus an opaque payload.
type envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Inbound is a server -> client message. The set is closed; DecodeInbound
// returns ErrUnknownAction for any discriminant outside it.
type Inbound interface{ isInbound() }

// PreGameData opens the mode-selection ceremony: candidate modes, the vote
// deadline, the roster, and the grid dimensions for the coming match.
type PreGameData struct {
	Modes        []string `json:"modes"`
	DeadlineSecs int      `json:"deadline_secs"`
	Players      []Player `json:"players"`
	GridRow      int      `json:"grid_row"`
	GridCol      int      `json:"grid_col"`
}

// ModeVoteUpdate reports a single player's vote. Incremental: it overwrites
// exactly one tally entry.
type ModeVoteUpdate struct {
	PlayerID string `json:"player_id"`
	Mode     string `json:"mode"`
}

// ModeChosen designates the drawn player and the resulting mode.
type ModeChosen struct {
	Mode     string `json:"mode"`
	ChosenBy string `json:"chosen_by"`
}

// StateUpdate carries the authoritative snapshot after each turn resolution.
type StateUpdate struct {
	State        GameState `json:"state"`
	TurnDuration int       `json:"turn_duration"`
}

type GameEnded struct {
	Winner string `json:"winner"`
}

// SessionKicked is sent when the server evicts this connection, e.g. the same
// wallet connected twice.
type SessionKicked struct {
	Reason string `json:"reason"`
}

type ServerError struct {
	Message string `json:"message"`
}

// RosterUpdate is the matchmaking resnapshot: both lists are replaced
// wholesale. The server emits it under three actions (PlayerJoin, PlayerLeave,
// UpdateState); the payload is identical and so is the handling.
type RosterUpdate struct {
	LobbyPlayers       []Player `json:"lobby_players"`
	ReadyPlayers       []Player `json:"ready_players"`
	CountdownActive    bool     `json:"countdown_active"`
	CountdownRemaining *int     `json:"countdown_remaining"`
}

type GameStarted struct {
	GameID string `json:"game_id"`
}

func (PreGameData) isInbound()    {}
func (ModeVoteUpdate) isInbound() {}
func (ModeChosen) isInbound()     {}
func (StateUpdate) isInbound()    {}
func (GameEnded) isInbound()      {}
func (SessionKicked) isInbound()  {}
func (ServerError) isInbound()    {}
func (RosterUpdate) isInbound()   {}
func (GameStarted) isInbound()    {}

// DecodeInbound parses one raw frame into its variant. Callers drop the frame
// on any error; a decode failure never closes the connection.
func DecodeInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("bad envelope: %w", err)
	}

	switch env.Action {
	case "GamePreGameData":
		return decodePayload[PreGameData](env)
	case "GameModeVoteUpdate":
		return decodePayload[ModeVoteUpdate](env)
	case "GameModeChosen":
		return decodePayload[ModeChosen](env)
	case "GameStateUpdate":
		return decodePayload[StateUpdate](env)
	case "GameEnded":
		return decodePayload[GameEnded](env)
	case "SessionKicked":
		return decodePayload[SessionKicked](env)
	case "Error":
		return decodePayload[ServerError](env)
	case "PlayerJoin", "PlayerLeave", "UpdateState":
		return decodePayload[RosterUpdate](env)
	case "GameStarted":
		return decodePayload[GameStarted](env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
	}
}

func decodePayload[T Inbound](env envelope) (Inbound, error) {
	var msg T
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return nil, fmt.Errorf("bad %s payload: %w", env.Action, err)
		}
	}
	return msg, nil
}

// Outbound is a client -> server command. All sends are fire-and-forget: the
// client never awaits a per-command acknowledgement, only the next snapshot.
type Outbound interface{ isOutbound() }

type MoveCommand struct {
	Direction Direction
}

type ShootCommand struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type CastVoteCommand struct {
	Mode string `json:"mode"`
}

type PayCommand struct{}

type CancelPaymentCommand struct{}

func (MoveCommand) isOutbound()          {}
func (ShootCommand) isOutbound()         {}
func (CastVoteCommand) isOutbound()      {}
func (PayCommand) isOutbound()           {}
func (CancelPaymentCommand) isOutbound() {}

// EncodeOutbound renders a command into its wire envelope.
func EncodeOutbound(cmd Outbound) ([]byte, error) {
	var env envelope
	switch c := cmd.(type) {
	case MoveCommand:
		// Move carries the bare direction string as its payload.
		data, err := json.Marshal(c.Direction)
		if err != nil {
			return nil, err
		}
		env = envelope{Action: "Move", Data: data}
	case ShootCommand:
		data, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		env = envelope{Action: "Shoot", Data: data}
	case CastVoteCommand:
		data, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		env = envelope{Action: "GameModeVote", Data: data}
	case PayCommand:
		env = envelope{Action: "Pay"}
	case CancelPaymentCommand:
		env = envelope{Action: "CancelPayment"}
	default:
		return nil, fmt.Errorf("unencodable command %T", cmd)
	}
	return json.Marshal(env)
}
