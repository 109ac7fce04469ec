// Package httpapi exposes a small local status surface so the presentation
// layer (or a curious operator) can read the derived view state as JSON.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cannonfall/client/internal/game"
	"github.com/cannonfall/client/internal/lobby"
)

// LobbyViewer and GameViewer report the current derived views. ok=false means
// that stage is not active right now.
type LobbyViewer func() (lobby.View, bool)
type GameViewer func() (game.View, bool)

func SetupRoutes(lobbyView LobbyViewer, gameView GameViewer) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state/lobby", LobbyState(lobbyView))
	r.Get("/state/game", GameState(gameView))
	return r
}
