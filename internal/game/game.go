// Package game implements the authoritative state machine for one game
// session: roster, dealing, turn sequencing, and card placement.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/playdeal/dealer/internal/cache"
	"github.com/playdeal/dealer/internal/database"
	"github.com/playdeal/dealer/internal/deck"
	"github.com/playdeal/dealer/internal/models"
)

// openingHandSize is the number of cards dealt to each player.
const openingHandSize = 5

// turnDrawCount is the number of cards drawn in the one draw event per turn.
const turnDrawCount = 2

// Turn tracks the acting player, the cards drawn this turn, and the card
// currently staged for placement. A fresh Turn is created whenever the turn
// owner changes.
type Turn struct {
	Player     string         // "" before the game starts
	DrawnCards []*models.Card // nil until the turn's draw event, then 0-2 cards
	ChosenCard *models.Card   // staged for placement, nil when nothing is staged
}

// Game holds the entire state for a single session in memory. All exported
// transitions acquire Mu, so concurrent callers against one game observe each
// transition atomically, in arrival order. Zones obey a conservation
// invariant: every card id minted at construction lives in exactly one of
// deck, a hand, a bank, or the discard pile.
type Game struct {
	Name string

	Players     []*models.Player // join order, stable; players are never removed
	Hands       map[string][]*models.Card
	DiscardPile []*models.Card
	Deck        []*models.Card

	Started     bool
	CurrentTurn Turn

	Mu sync.Mutex

	rng         *rand.Rand
	actionIndex int

	// BroadcastFn is used to send events to all players. If nil, no broadcast
	// is done.
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn sends an event to a single specific player.
	BroadcastToPlayerFn func(player string, ev GameEvent)
}

// NewGame builds a game with one founding player and a freshly shuffled
// standard deck. Construction is total; there are no failure conditions.
func NewGame(name, founder string) *Game {
	return NewGameWithRand(name, founder, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGameWithRand is NewGame with an injected randomness source, used by
// tests to fix the shuffle and the first-turn pick. A nil source falls back
// to a time-seeded one.
func NewGameWithRand(name, founder string, r *rand.Rand) *Game {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{
		Name:        name,
		Hands:       make(map[string][]*models.Card),
		DiscardPile: []*models.Card{},
		rng:         r,
	}
	g.Deck = deck.NewShuffled(r)
	g.Players = append(g.Players, &models.Player{Name: founder, Bank: []*models.Card{}})
	g.Hands[founder] = []*models.Card{}
	return g
}

// Join adds a participant before the game starts. Joining is idempotent: a
// player already on the roster is never an error, started or not. A
// non-member joining a started game fails with ErrGameStarted.
func (g *Game) Join(player string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.findPlayer(player) != nil {
		return nil
	}
	if g.Started {
		return ErrGameStarted
	}

	g.Players = append(g.Players, &models.Player{Name: player, Bank: []*models.Card{}})
	g.Hands[player] = []*models.Card{}

	g.fireEvent(GameEvent{Type: EventPlayerJoin, User: &EventUser{Name: player}})
	g.logAction(player, string(EventPlayerJoin), nil)
	return nil
}

// Deal distributes an opening hand to every player in join order, marks the
// game started, and hands the first turn to a uniformly random player.
// Calling it twice re-deals all hands from whatever deck remains; preventing
// that misuse is the caller's responsibility. If the deck runs short, the
// players dealt last receive a short hand rather than failing.
func (g *Game) Deal() {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	for _, p := range g.Players {
		n := openingHandSize
		if n > len(g.Deck) {
			n = len(g.Deck)
		}
		hand := make([]*models.Card, n)
		copy(hand, g.Deck[:n])
		g.Deck = g.Deck[n:]
		g.Hands[p.Name] = hand
	}
	g.Started = true

	first := g.Players[g.rng.Intn(len(g.Players))]
	g.CurrentTurn = Turn{Player: first.Name}

	g.persistInitialState()

	g.fireEvent(GameEvent{
		Type:    EventGameDeal,
		Payload: map[string]interface{}{"deck_size": len(g.Deck)},
	})
	for _, p := range g.Players {
		g.sendHand(p.Name)
	}
	g.broadcastPlayerTurn()
	g.logAction("", string(EventGameDeal), map[string]interface{}{"first_turn": first.Name})
}

// DrawCards performs the turn-scoped draw of two cards from the deck into the
// acting player's hand. It is a no-op for anyone but the turn owner, and a
// no-op once the turn has its draw event. If fewer than two cards remain the
// draw degrades to whatever is available; it never fails.
func (g *Game) DrawCards(player string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.CurrentTurn.Player == "" || g.CurrentTurn.Player != player {
		return
	}
	// One draw event per turn: spent even when the deck came up short.
	if g.CurrentTurn.DrawnCards != nil {
		return
	}

	n := turnDrawCount
	if n > len(g.Deck) {
		n = len(g.Deck)
	}
	drawn := make([]*models.Card, n)
	copy(drawn, g.Deck[:n])
	g.Deck = g.Deck[n:]

	g.Hands[player] = append(g.Hands[player], drawn...)
	g.CurrentTurn.DrawnCards = drawn

	g.fireEvent(GameEvent{
		Type:    EventPlayerDraw,
		User:    &EventUser{Name: player},
		Payload: map[string]interface{}{"count": len(drawn), "deck_size": len(g.Deck)},
	})
	ev := GameEvent{Type: EventPrivateDraw}
	for _, c := range drawn {
		ev.Cards = append(ev.Cards, buildEventCard(c, true))
	}
	g.fireEventToPlayer(player, ev)
	g.logAction(player, string(EventPlayerDraw), map[string]interface{}{"count": len(drawn)})
}

// ChooseCard stages a card from the acting player's hand for placement. The
// turn must already have its draw event, the caller must own the turn, and
// the id must be present in their hand.
func (g *Game) ChooseCard(player string, cardID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if len(g.CurrentTurn.DrawnCards) == 0 {
		return ErrDrawCardsRequired
	}
	if g.CurrentTurn.Player != player {
		return ErrNotYourTurn
	}
	card := g.findCard(player, cardID)
	if card == nil {
		return ErrCardNotFound
	}
	g.CurrentTurn.ChosenCard = card

	g.fireEventToPlayer(player, GameEvent{
		Type: EventPrivateChoose,
		Card: buildEventCard(card, true),
	})
	g.logAction(player, string(EventPrivateChoose), map[string]interface{}{"card_id": cardID})
	return nil
}

// PlaceCardBank commits the staged card into the acting player's bank,
// removing it from their hand and clearing the selection. The turn does not
// advance.
func (g *Game) PlaceCardBank(player string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	chosen := g.CurrentTurn.ChosenCard
	if chosen == nil {
		return ErrChooseCardRequired
	}
	if g.CurrentTurn.Player != player {
		return ErrNotYourTurn
	}

	p := g.findPlayer(player)
	if p.Bank == nil {
		p.Bank = []*models.Card{}
	}
	p.Bank = append(p.Bank, chosen)
	g.Hands[player] = removeCard(g.Hands[player], chosen.ID)
	g.CurrentTurn.ChosenCard = nil

	g.fireEvent(GameEvent{
		Type: EventPlayerBank,
		User: &EventUser{Name: player},
		Card: buildEventCard(chosen, true),
	})
	g.logAction(player, string(EventPlayerBank), map[string]interface{}{"card_id": chosen.ID})
	return nil
}

// FindPlayer returns the matching player or nil.
func (g *Game) FindPlayer(player string) *models.Player {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.findPlayer(player)
}

// FindCard returns the hand entry whose id matches, or nil.
func (g *Game) FindCard(player string, cardID uuid.UUID) *models.Card {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.findCard(player, cardID)
}

// GetHand returns the player's current hand. Asking for an unregistered
// player's hand is a programming error and panics.
func (g *Game) GetHand(player string) []*models.Card {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	hand, ok := g.Hands[player]
	if !ok {
		panic(fmt.Sprintf("game %s: no hand for unregistered player %q", g.Name, player))
	}
	return hand
}

// HandleConnect marks a player as connected and sends them a state sync.
func (g *Game) HandleConnect(player string, conn *websocket.Conn) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	p := g.findPlayer(player)
	if p == nil {
		if conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "You are not a player in this game.")
		}
		return
	}
	p.Connected = true
	p.Conn = conn
	g.sendSyncState(player)
	g.logAction(player, "player_connect", nil)
}

// HandleDisconnect marks a player as disconnected. The roster never shrinks;
// the player can reconnect and resume.
func (g *Game) HandleDisconnect(player string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	p := g.findPlayer(player)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	p.Conn = nil
	g.logAction(player, "player_disconnect", nil)
}

// findPlayer returns the player by name. Assumes lock is held.
func (g *Game) findPlayer(player string) *models.Player {
	for _, p := range g.Players {
		if p.Name == player {
			return p
		}
	}
	return nil
}

// findCard scans the player's hand for the id. Assumes lock is held.
func (g *Game) findCard(player string, cardID uuid.UUID) *models.Card {
	for _, c := range g.Hands[player] {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}

// removeCard drops the card with the given id from a zone, preserving order.
func removeCard(cards []*models.Card, cardID uuid.UUID) []*models.Card {
	out := cards[:0]
	for _, c := range cards {
		if c.ID != cardID {
			out = append(out, c)
		}
	}
	return out
}

// sendHand privately sends a player their full hand. Assumes lock is held.
func (g *Game) sendHand(player string) {
	ev := GameEvent{Type: EventPrivateHand}
	for _, c := range g.Hands[player] {
		ev.Cards = append(ev.Cards, buildEventCard(c, true))
	}
	g.fireEventToPlayer(player, ev)
}

// sendSyncState sends the player-scoped state snapshot. Assumes lock is held.
func (g *Game) sendSyncState(player string) {
	state := g.syncState(player)
	g.fireEventToPlayer(player, GameEvent{Type: EventPrivateSync, State: &state})
}

// broadcastPlayerTurn notifies all players whose turn it is now. Assumes lock
// is held.
func (g *Game) broadcastPlayerTurn() {
	if g.CurrentTurn.Player == "" {
		return
	}
	g.fireEvent(GameEvent{
		Type: EventGamePlayerTurn,
		User: &EventUser{Name: g.CurrentTurn.Player},
	})
}

// fireEvent broadcasts an event to all connected players. Assumes lock is
// held.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event only to a specific player. Assumes lock is
// held.
func (g *Game) fireEventToPlayer(player string, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	p := g.findPlayer(player)
	if p != nil && p.Connected {
		g.BroadcastToPlayerFn(player, ev)
	}
}

// persistInitialState saves the deck order and each player's opening hand so
// a replay can reconstruct the deal. Assumes lock is held.
func (g *Game) persistInitialState() {
	type initialState struct {
		Deck  []*models.Card            `json:"deck"`
		Hands map[string][]*models.Card `json:"hands"`
	}
	snap := initialState{
		Deck:  make([]*models.Card, len(g.Deck)),
		Hands: make(map[string][]*models.Card, len(g.Hands)),
	}
	copy(snap.Deck, g.Deck)
	for name, hand := range g.Hands {
		handCopy := make([]*models.Card, len(hand))
		copy(handCopy, hand)
		snap.Hands[name] = handCopy
	}
	go database.UpsertInitialGameState(g.Name, snap)
}

// logAction pushes an action record onto the history queue for the historian
// consumer. Fire-and-forget; a missing Redis connection is tolerated.
func (g *Game) logAction(actor, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameName:      g.Name,
		ActionIndex:   g.actionIndex,
		ActorName:     actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = cache.PublishGameAction(ctx, rec)
	}(record)
}
