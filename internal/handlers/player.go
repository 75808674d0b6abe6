// internal/handlers/player.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playdeal/dealer/internal/auth"
	"github.com/playdeal/dealer/internal/database"
)

// ClaimNameHandler lets a player protect their name with a password so no one
// else can play under it. POST {"player": "...", "password": "..."}
func ClaimNameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Player   string `json:"player"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Player == "" || req.Password == "" {
		http.Error(w, "expected JSON body with player and password", http.StatusBadRequest)
		return
	}

	if _, err := database.GetPlayerCredential(r.Context(), req.Player); err == nil {
		http.Error(w, "player name already claimed", http.StatusConflict)
		return
	} else if !errors.Is(err, database.ErrPlayerNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}
	if err := database.UpsertPlayerCredential(r.Context(), req.Player, hash); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	issueToken(w, req.Player)
}

// LoginHandler verifies a claimed name's password and issues a session token.
// POST {"player": "...", "password": "..."}
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Player   string `json:"player"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Player == "" || req.Password == "" {
		http.Error(w, "expected JSON body with player and password", http.StatusBadRequest)
		return
	}

	hash, err := database.GetPlayerCredential(r.Context(), req.Player)
	if err != nil {
		if errors.Is(err, database.ErrPlayerNotFound) {
			http.Error(w, "player name not claimed", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ok, err := auth.VerifyPassword(req.Password, hash)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	issueToken(w, req.Player)
}

// issueToken writes a fresh JWT for the player as both cookie and JSON body.
func issueToken(w http.ResponseWriter, player string) {
	token, err := auth.CreateJWT(player)
	if err != nil {
		http.Error(w, "failed to issue session token", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: token, Path: "/", HttpOnly: true})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token, "player": player})
}
