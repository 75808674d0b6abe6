package game

import (
	"github.com/playdeal/dealer/internal/models"
)

// PlayerView is the public projection of one player: name and bank only.
// Banks are open information; hands are not.
type PlayerView struct {
	Name string         `json:"name"`
	Bank []*models.Card `json:"bank"`
}

// TurnView is the public projection of the current turn. Drawn and chosen
// cards stay hidden; only their presence is exposed.
type TurnView struct {
	Player     string `json:"player,omitempty"`
	DrawnCount int    `json:"drawn_count"`
	HasChosen  bool   `json:"has_chosen"`
}

// GameStateView is the public projection of a game. Hands and deck contents
// are omitted as hidden information.
type GameStateView struct {
	GameName    string       `json:"game_name"`
	Players     []PlayerView `json:"players"`
	Started     bool         `json:"started"`
	CurrentTurn TurnView     `json:"current_turn"`
}

// PlayerStateView is the projection of a game for one player, including
// their own hand.
type PlayerStateView struct {
	Name   string         `json:"name"`
	Bank   []*models.Card `json:"bank"`
	Hand   []*models.Card `json:"hand"`
	MyTurn bool           `json:"my_turn"`
}

// SyncState is the snapshot sent privately on connect/reconnect: the public
// game view plus the receiving player's own view.
type SyncState struct {
	Game   GameStateView    `json:"game"`
	Player *PlayerStateView `json:"player,omitempty"`
}

// GameState returns the public projection of the game.
func (g *Game) GameState() GameStateView {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.gameState()
}

// PlayerState returns the projection for one player, or nil if the player is
// not on the roster. MyTurn is false whenever no turn owner is set yet.
func (g *Game) PlayerState(player string) *PlayerStateView {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.playerState(player)
}

// gameState builds the public view. Assumes lock is held.
func (g *Game) gameState() GameStateView {
	view := GameStateView{
		GameName: g.Name,
		Started:  g.Started,
		CurrentTurn: TurnView{
			Player:     g.CurrentTurn.Player,
			DrawnCount: len(g.CurrentTurn.DrawnCards),
			HasChosen:  g.CurrentTurn.ChosenCard != nil,
		},
	}
	for _, p := range g.Players {
		view.Players = append(view.Players, PlayerView{
			Name: p.Name,
			Bank: copyCards(p.Bank),
		})
	}
	return view
}

// playerState builds the per-player view. Assumes lock is held.
func (g *Game) playerState(player string) *PlayerStateView {
	p := g.findPlayer(player)
	if p == nil {
		return nil
	}
	return &PlayerStateView{
		Name:   p.Name,
		Bank:   copyCards(p.Bank),
		Hand:   copyCards(g.Hands[player]),
		MyTurn: g.CurrentTurn.Player != "" && g.CurrentTurn.Player == player,
	}
}

// syncState builds the connect/reconnect snapshot. Assumes lock is held.
func (g *Game) syncState(player string) SyncState {
	return SyncState{
		Game:   g.gameState(),
		Player: g.playerState(player),
	}
}

// copyCards shallow-copies a card slice. Cards themselves are immutable, so
// sharing the pointers is safe.
func copyCards(cards []*models.Card) []*models.Card {
	if cards == nil {
		return []*models.Card{}
	}
	out := make([]*models.Card, len(cards))
	copy(out, cards)
	return out
}
