// Package protocol defines the JSON wire protocol spoken over both sockets.
//
// Server -> Client (game socket):
//
//	GamePreGameData:
//	  modes: [string]
//	  deadline_secs: number
//	  players: [{id, username}]
//	  grid_row: number
//	  grid_col: number
//
//	GameModeVoteUpdate:
//	  player_id: string
//	  mode: string
//
//	GameModeChosen:
//	  mode: string
//	  chosen_by: string
//
//	GameStateUpdate:
//	  state: {grid, players, cannonballs, turn, targeted_tiles, mode}
//	  turn_duration: number
//
//	GameEnded:
//	  winner: string
//
//	SessionKicked:
//	  reason: string
//
// Server -> Client (matchmaking socket):
//
//	PlayerJoin | PlayerLeave | UpdateState:
//	  lobby_players: [{id, username}]
//	  ready_players: [{id, username}]
//	  countdown_active: boolean
//	  countdown_remaining: number | null
//
//	GameStarted:
//	  game_id: string
//
// Client -> Server:
//
//	Move: "Up" | "Down" | "Left" | "Right" | "Stay"
//	Shoot: {x, y}
//	GameModeVote: {mode}
//	Pay: {}
//	CancelPayment: {}
//
// Every message is an {action, data} envelope. Unknown actions are dropped
// without closing the connection.
package protocol
