package game

import "github.com/cannonfall/client/internal/protocol"

// PlayerView is a player plus everything the presentation layer needs to draw
// them: the render position (prediction-aware for the local player) and their
// recorded vote.
type PlayerView struct {
	protocol.Player
	RenderPos *protocol.Position `json:"render_pos,omitempty"`
	Voted     string             `json:"voted,omitempty"`
	IsLocal   bool               `json:"is_local"`
}

// View is the derived state handed to the presentation layer. It is computed
// fresh on every request; nothing in it is authoritative.
type View struct {
	Phase          Phase                   `json:"phase"`
	Turn           int                     `json:"turn"`
	ConnStatus     string                  `json:"conn_status"`
	LastError      string                  `json:"last_error,omitempty"`
	AcceptingInput bool                    `json:"accepting_input"`
	Grid           [][]protocol.Cell       `json:"grid,omitempty"`
	Players        []PlayerView            `json:"players,omitempty"`
	Cannonballs    []protocol.Cannonball   `json:"cannonballs,omitempty"`
	TargetedTiles  []protocol.TargetedTile `json:"targeted_tiles,omitempty"`
	TurnRemaining  int                     `json:"turn_remaining"`

	Modes         []string       `json:"modes,omitempty"`
	VoteCounts    map[string]int `json:"vote_counts,omitempty"`
	VoteRemaining int            `json:"vote_remaining"`
	HasVoted      bool           `json:"has_voted"`

	RouletteIndex    int      `json:"roulette_index"`
	RouletteSpinning bool     `json:"roulette_spinning"`
	RouletteEntries  []string `json:"roulette_entries,omitempty"`
	Highlighted      bool     `json:"highlighted"`
	ChosenMode       string   `json:"chosen_mode,omitempty"`
	ChosenBy         string   `json:"chosen_by,omitempty"`

	Winner string `json:"winner,omitempty"`
}

func (s *Session) view() View {
	v := View{
		Phase:          s.machine.Phase(),
		Turn:           s.machine.Turn(),
		ConnStatus:     s.connStatus,
		LastError:      s.lastError,
		AcceptingInput: s.machine.AcceptingInput(),
		TurnRemaining:  s.turnTimer.Remaining(),
		VoteRemaining:  s.voteTimer.Remaining(),
		ChosenMode:     s.chosenMode,
		ChosenBy:       s.chosenBy,
		Highlighted:    s.highlighted,
		Winner:         s.winner,
	}

	if s.state != nil {
		v.Grid = s.state.Grid
		v.Cannonballs = s.state.Cannonballs
		v.TargetedTiles = s.state.TargetedTiles
		v.Players = make([]PlayerView, len(s.state.Players))
		for i, p := range s.state.Players {
			pv := PlayerView{Player: p, IsLocal: p.ID == s.me}
			if pv.IsLocal {
				pv.RenderPos = RenderPosition(p.Pos, s.predictor.pred, s.machine.Turn())
			} else {
				pv.RenderPos = p.Pos
			}
			if s.vote != nil {
				if mode, ok := s.vote.Vote(p.ID); ok {
					pv.Voted = mode
				}
			}
			v.Players[i] = pv
		}
	}

	if s.vote != nil {
		v.Modes = s.vote.Modes
		v.VoteCounts = s.vote.CountsPerMode()
		v.HasVoted = s.vote.HasLocalVoted()
		if s.roulette != nil {
			voters := s.vote.Voters()
			v.RouletteEntries = make([]string, len(voters))
			for i, p := range voters {
				v.RouletteEntries[i] = p.ID
			}
			v.RouletteIndex = s.roulette.Index()
			v.RouletteSpinning = s.roulette.Spinning()
		}
	}
	return v
}
