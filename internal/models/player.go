package models

import (
	"github.com/coder/websocket"
)

// Player is a participant in a single game. Identity within a game is by Name.
// The Bank holds cards the player has committed from their hand; hands
// themselves are owned by the Game, not the Player.
type Player struct {
	Name string  `json:"name"`
	Bank []*Card `json:"bank"`

	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
}
