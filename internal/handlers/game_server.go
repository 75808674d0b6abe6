// internal/handlers/game_server.go
package handlers

import (
	"log"

	"github.com/playdeal/dealer/internal/game"
)

// GameServer is a high-level struct that holds the session directory and is
// shared by every HTTP and WebSocket handler.
type GameServer struct {
	GameStore *game.GameStore
	Logf      func(f string, v ...interface{})
}

func NewGameServer() *GameServer {
	return &GameServer{
		GameStore: game.NewGameStore(),
		Logf:      log.Printf,
	}
}
