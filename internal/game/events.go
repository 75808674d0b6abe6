package game

import (
	"github.com/google/uuid"
	"github.com/playdeal/dealer/internal/models"
)

// GameEventType is an enum-like type for broadcasting game actions.
type GameEventType string

const (
	EventPlayerJoin     GameEventType = "player_join"        // Public: a player joined the roster
	EventGameDeal       GameEventType = "game_deal"          // Public: opening hands dealt, game started
	EventGamePlayerTurn GameEventType = "game_player_turn"   // Public: whose turn it is
	EventPlayerDraw     GameEventType = "player_draw"        // Public: draw notification (count only)
	EventPrivateDraw    GameEventType = "private_draw"       // Private: drawn card details
	EventPrivateChoose  GameEventType = "private_choose"     // Private: card staged for placement
	EventPlayerBank     GameEventType = "player_place_bank"  // Public: card committed to a bank (banks are open)
	EventPrivateHand    GameEventType = "private_hand"       // Private: full hand contents
	EventPrivateSync    GameEventType = "private_sync_state" // Private: state sync on connect/reconnect
)

// EventUser identifies a player within GameEvent payloads.
type EventUser struct {
	Name string `json:"name"`
}

// EventCard carries card data within GameEvent payloads. Public events keep
// only the ID; private events and bank placements include the full details.
type EventCard struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Kind  string    `json:"kind,omitempty"`
	Color string    `json:"color,omitempty"`
	Value int       `json:"value,omitempty"`
}

// GameEvent holds data about an event broadcast to clients in a consistent
// format.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Card    *EventCard             `json:"card,omitempty"`
	Cards   []*EventCard           `json:"cards,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *SyncState             `json:"state,omitempty"`
}

// buildEventCard converts a model card into its event form. When reveal is
// false only the ID is carried, keeping hidden zones hidden.
func buildEventCard(c *models.Card, reveal bool) *EventCard {
	if c == nil {
		return nil
	}
	if !reveal {
		return &EventCard{ID: c.ID}
	}
	return &EventCard{ID: c.ID, Name: c.Name, Kind: c.Kind, Color: c.Color, Value: c.Value}
}
