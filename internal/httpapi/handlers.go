package httpapi

import (
	"encoding/json"
	"net/http"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func LobbyState(view LobbyViewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := view()
		if !ok {
			http.Error(w, "matchmaking not active", http.StatusNotFound)
			return
		}
		writeJSON(w, v)
	}
}

func GameState(view GameViewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := view()
		if !ok {
			http.Error(w, "no game in progress", http.StatusNotFound)
			return
		}
		writeJSON(w, v)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
