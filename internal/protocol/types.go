package protocol

// Direction of a movement action.
type Direction string

const (
	DirUp    Direction = "Up"
	DirDown  Direction = "Down"
	DirLeft  Direction = "Left"
	DirRight Direction = "Right"
	DirStay  Direction = "Stay"
)

// Cell is the state of one grid tile.
type Cell string

const (
	CellSolid  Cell = "Solid"
	CellBroken Cell = "Broken"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Player as the server describes it. Pos is absent before a match starts.
type Player struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Pos             *Position `json:"pos,omitempty"`
	CannonballCount int       `json:"cannonball_count"`
	IsAlive         bool      `json:"is_alive"`
}

type Cannonball struct {
	Pos Position `json:"pos"`
}

type TargetedTile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameState is the full authoritative snapshot for one turn. It is replaced
// wholesale on every update; the client never merges snapshots.
type GameState struct {
	Grid          [][]Cell       `json:"grid"`
	Players       []Player       `json:"players"`
	Cannonballs   []Cannonball   `json:"cannonballs"`
	Turn          int            `json:"turn"`
	TargetedTiles []TargetedTile `json:"targeted_tiles"`
	Mode          string         `json:"mode,omitempty"`
}

// PlayerByID returns the player with the given id, if present.
func (g *GameState) PlayerByID(id string) (Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}
