// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playdeal/dealer/internal/auth"
	"github.com/playdeal/dealer/internal/game"
)

// CreateGameHandler registers a new game under a unique name with the caller
// as founding player, and issues a session token bound to that player name.
// POST {"game": "...", "player": "..."}
func CreateGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Game   string `json:"game"`
			Player string `json:"player"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Game == "" || req.Player == "" {
			http.Error(w, "expected JSON body with game and player", http.StatusBadRequest)
			return
		}

		g, err := gs.GameStore.CreateGame(req.Game, req.Player)
		if err != nil {
			if errors.Is(err, game.ErrGameExists) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		token, err := auth.CreateJWT(req.Player)
		if err != nil {
			http.Error(w, "failed to issue session token", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: token, Path: "/", HttpOnly: true})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": token,
			"state": g.GameState(),
		})
	}
}

// GameStateHandler returns the public projection of a game.
// GET /game/state?game=NAME
func GameStateHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("game")
		if name == "" {
			http.Error(w, "missing game query parameter", http.StatusBadRequest)
			return
		}
		g, ok := gs.GameStore.GetGame(name)
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(g.GameState())
	}
}

// ListGamesHandler returns the names of all registered games.
func ListGamesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"games": gs.GameStore.Names(),
		})
	}
}
