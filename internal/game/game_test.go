// internal/game/game_test.go
package game

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/playdeal/dealer/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[string][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[string][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(player string, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[player] = append(mb.playerEvents[player], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = nil
	mb.playerEvents = make(map[string][]GameEvent)
}

func (mb *mockBroadcaster) lastEvent() *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.allEvents) == 0 {
		return nil
	}
	return &mb.allEvents[len(mb.allEvents)-1]
}

// setupTestGame builds a two-player game with a seeded shuffle and mock
// broadcasters. Players are marked connected so private events are delivered.
func setupTestGame(t *testing.T, seed int64) (*Game, *mockBroadcaster) {
	t.Helper()
	g := NewGameWithRand("test-game", "alice", rand.New(rand.NewSource(seed)))
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	require.NoError(t, g.Join("bob"))
	for _, p := range g.Players {
		p.Connected = true
	}
	mb.clear()
	return g, mb
}

// turnSplit returns the current turn owner and the other player.
func turnSplit(t *testing.T, g *Game) (owner, other string) {
	t.Helper()
	owner = g.CurrentTurn.Player
	require.NotEmpty(t, owner, "game must be started")
	for _, p := range g.Players {
		if p.Name != owner {
			return owner, p.Name
		}
	}
	t.Fatal("no second player found")
	return
}

// allCardIDs gathers every card id across deck, hands, banks, and discard.
func allCardIDs(g *Game) []uuid.UUID {
	var ids []uuid.UUID
	for _, c := range g.Deck {
		ids = append(ids, c.ID)
	}
	for _, hand := range g.Hands {
		for _, c := range hand {
			ids = append(ids, c.ID)
		}
	}
	for _, p := range g.Players {
		for _, c := range p.Bank {
			ids = append(ids, c.ID)
		}
	}
	for _, c := range g.DiscardPile {
		ids = append(ids, c.ID)
	}
	return ids
}

// assertConservation checks that the union of all zones is still the full
// 106-card set with no duplicates and no loss.
func assertConservation(t *testing.T, g *Game) {
	t.Helper()
	ids := allCardIDs(g)
	require.Len(t, ids, deck.Size)
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		require.False(t, seen[id], "card %s appears in more than one zone", id)
		seen[id] = true
	}
}

func TestNewGame(t *testing.T) {
	g := NewGameWithRand("g", "alice", rand.New(rand.NewSource(1)))

	assert.False(t, g.Started)
	assert.Empty(t, g.CurrentTurn.Player)
	assert.Len(t, g.Deck, deck.Size)
	assert.Empty(t, g.DiscardPile)
	require.Len(t, g.Players, 1)
	assert.Equal(t, "alice", g.Players[0].Name)
	require.Contains(t, g.Hands, "alice")
	assert.Empty(t, g.Hands["alice"])
	assertConservation(t, g)
}

func TestNewGameNilRandSource(t *testing.T) {
	g := NewGameWithRand("g", "alice", nil)
	require.NoError(t, g.Join("bob"))

	assert.Len(t, g.Deck, deck.Size)
	g.Deal()
	assert.True(t, g.Started)
	assert.NotEmpty(t, g.CurrentTurn.Player)
}

func TestJoinIdempotent(t *testing.T) {
	g, _ := setupTestGame(t, 1)

	require.NoError(t, g.Join("bob"))
	require.NoError(t, g.Join("bob"))

	assert.Len(t, g.Players, 2)
	assert.Len(t, g.Hands, 2)
	assert.Equal(t, []string{"alice", "bob"}, playerNames(g))
}

func TestJoinPreservesOrder(t *testing.T) {
	g, mb := setupTestGame(t, 1)

	require.NoError(t, g.Join("carol"))
	assert.Equal(t, []string{"alice", "bob", "carol"}, playerNames(g))

	ev := mb.lastEvent()
	require.NotNil(t, ev)
	assert.Equal(t, EventPlayerJoin, ev.Type)
	assert.Equal(t, "carol", ev.User.Name)
}

func TestJoinAfterStart(t *testing.T) {
	g, _ := setupTestGame(t, 1)
	g.Deal()

	// A member joining again is a no-op, not an error.
	require.NoError(t, g.Join("bob"))
	assert.Len(t, g.Players, 2)

	// A newcomer is rejected once the game has started.
	err := g.Join("mallory")
	require.ErrorIs(t, err, ErrGameStarted)
	assert.Len(t, g.Players, 2)
	assert.NotContains(t, g.Hands, "mallory")
}

func TestDeal(t *testing.T) {
	g, mb := setupTestGame(t, 3)
	g.Deal()

	assert.True(t, g.Started)
	assert.Len(t, g.Deck, deck.Size-2*5)
	for _, p := range g.Players {
		assert.Len(t, g.Hands[p.Name], 5, "player %s should have a full opening hand", p.Name)
	}
	require.NotEmpty(t, g.CurrentTurn.Player)
	assert.NotNil(t, g.FindPlayer(g.CurrentTurn.Player), "first turn must go to a roster member")
	assert.Empty(t, g.CurrentTurn.DrawnCards)
	assert.Nil(t, g.CurrentTurn.ChosenCard)
	assertConservation(t, g)

	// Turn announcement goes out after the deal.
	ev := mb.lastEvent()
	require.NotNil(t, ev)
	assert.Equal(t, EventGamePlayerTurn, ev.Type)
	assert.Equal(t, g.CurrentTurn.Player, ev.User.Name)
}

func TestDealShortDeck(t *testing.T) {
	g, _ := setupTestGame(t, 3)

	// Leave only 7 cards: alice gets 5, bob gets the remaining 2.
	g.Deck = g.Deck[:7]
	g.Deal()

	assert.Len(t, g.Hands["alice"], 5)
	assert.Len(t, g.Hands["bob"], 2)
	assert.Empty(t, g.Deck)
	assert.True(t, g.Started)
}

func TestDrawCards(t *testing.T) {
	g, _ := setupTestGame(t, 5)
	g.Deal()
	owner, other := turnSplit(t, g)
	deckBefore := len(g.Deck)

	// Non-owner draw is a no-op.
	g.DrawCards(other)
	assert.Len(t, g.Hands[other], 5)
	assert.Len(t, g.Deck, deckBefore)
	assert.Empty(t, g.CurrentTurn.DrawnCards)

	// Owner draws exactly two.
	g.DrawCards(owner)
	assert.Len(t, g.Hands[owner], 7)
	assert.Len(t, g.Deck, deckBefore-2)
	require.Len(t, g.CurrentTurn.DrawnCards, 2)
	assert.Equal(t, g.CurrentTurn.DrawnCards[0].ID, g.Hands[owner][5].ID)
	assert.Equal(t, g.CurrentTurn.DrawnCards[1].ID, g.Hands[owner][6].ID)

	// Second draw in the same turn is a no-op.
	g.DrawCards(owner)
	assert.Len(t, g.Hands[owner], 7)
	assert.Len(t, g.Deck, deckBefore-2)
	assert.Len(t, g.CurrentTurn.DrawnCards, 2)
	assertConservation(t, g)
}

func TestDrawCardsBeforeDeal(t *testing.T) {
	g, _ := setupTestGame(t, 5)

	g.DrawCards("alice")
	assert.Empty(t, g.Hands["alice"])
	assert.Len(t, g.Deck, deck.Size)
}

func TestDrawCardsShortDeck(t *testing.T) {
	g, _ := setupTestGame(t, 5)
	g.Deal()
	owner, _ := turnSplit(t, g)

	g.Deck = g.Deck[:1]
	g.DrawCards(owner)

	assert.Len(t, g.Hands[owner], 6, "a short draw yields what the deck had")
	assert.Empty(t, g.Deck)
	assert.Len(t, g.CurrentTurn.DrawnCards, 1)

	// The turn's draw event is spent even though it was short.
	g.DrawCards(owner)
	assert.Len(t, g.Hands[owner], 6)
}

func TestDrawCardsEmptyDeck(t *testing.T) {
	g, _ := setupTestGame(t, 5)
	g.Deal()
	owner, _ := turnSplit(t, g)

	g.Deck = g.Deck[:0]
	g.DrawCards(owner)

	assert.Len(t, g.Hands[owner], 5)
	assert.NotNil(t, g.CurrentTurn.DrawnCards, "the draw event is spent even with nothing to draw")
	assert.Empty(t, g.CurrentTurn.DrawnCards)

	// Spent means spent: a repeat draw stays a no-op.
	g.DrawCards(owner)
	assert.Len(t, g.Hands[owner], 5)

	// Nothing was drawn, so there is still nothing to choose from.
	err := g.ChooseCard(owner, g.Hands[owner][0].ID)
	require.ErrorIs(t, err, ErrDrawCardsRequired)
}

func TestChooseCard(t *testing.T) {
	g, _ := setupTestGame(t, 7)
	g.Deal()
	owner, other := turnSplit(t, g)

	// Choosing before drawing fails regardless of who asks.
	err := g.ChooseCard(owner, g.Hands[owner][0].ID)
	require.ErrorIs(t, err, ErrDrawCardsRequired)

	g.DrawCards(owner)

	// Wrong player.
	err = g.ChooseCard(other, g.Hands[other][0].ID)
	require.ErrorIs(t, err, ErrNotYourTurn)

	// Unknown id fails explicitly instead of silently clearing the selection.
	err = g.ChooseCard(owner, uuid.New())
	require.ErrorIs(t, err, ErrCardNotFound)
	assert.Nil(t, g.CurrentTurn.ChosenCard)

	// Success stages the matching hand entry.
	target := g.Hands[owner][2]
	require.NoError(t, g.ChooseCard(owner, target.ID))
	require.NotNil(t, g.CurrentTurn.ChosenCard)
	assert.Equal(t, target.ID, g.CurrentTurn.ChosenCard.ID)
}

func TestPlaceCardBank(t *testing.T) {
	g, mb := setupTestGame(t, 9)
	g.Deal()
	owner, other := turnSplit(t, g)

	// Placing with nothing staged fails.
	err := g.PlaceCardBank(owner)
	require.ErrorIs(t, err, ErrChooseCardRequired)

	g.DrawCards(owner)
	target := g.Hands[owner][0]
	require.NoError(t, g.ChooseCard(owner, target.ID))

	// Wrong player.
	err = g.PlaceCardBank(other)
	require.ErrorIs(t, err, ErrNotYourTurn)
	require.NotNil(t, g.CurrentTurn.ChosenCard, "failed placement must not consume the selection")

	handBefore := len(g.Hands[owner])
	require.NoError(t, g.PlaceCardBank(owner))

	p := g.FindPlayer(owner)
	require.Len(t, p.Bank, 1)
	assert.Equal(t, target.ID, p.Bank[0].ID)
	assert.Len(t, g.Hands[owner], handBefore-1)
	assert.Nil(t, g.FindCard(owner, target.ID), "placed card must leave the hand")
	assert.Nil(t, g.CurrentTurn.ChosenCard)
	assertConservation(t, g)

	ev := mb.lastEvent()
	require.NotNil(t, ev)
	assert.Equal(t, EventPlayerBank, ev.Type)
	assert.Equal(t, owner, ev.User.Name)
	require.NotNil(t, ev.Card)
	assert.Equal(t, target.ID, ev.Card.ID)
}

// TestFullTurnScenario walks the whole flow: create, join, deal, draw,
// choose, place.
func TestFullTurnScenario(t *testing.T) {
	g, _ := setupTestGame(t, 11)
	g.Deal()
	owner, _ := turnSplit(t, g)

	g.DrawCards(owner)
	chosen := g.Hands[owner][3]
	require.NoError(t, g.ChooseCard(owner, chosen.ID))
	require.NoError(t, g.PlaceCardBank(owner))

	p := g.FindPlayer(owner)
	require.Len(t, p.Bank, 1)
	assert.Equal(t, chosen.ID, p.Bank[0].ID)
	assert.Nil(t, g.FindCard(owner, chosen.ID))
	assert.Nil(t, g.CurrentTurn.ChosenCard)

	// Turn ownership does not advance on placement.
	assert.Equal(t, owner, g.CurrentTurn.Player)
	assertConservation(t, g)
}

func TestGetHand(t *testing.T) {
	g, _ := setupTestGame(t, 13)
	g.Deal()

	assert.Len(t, g.GetHand("alice"), 5)
	assert.Panics(t, func() { g.GetHand("mallory") })
}

func TestFindPlayerAndCard(t *testing.T) {
	g, _ := setupTestGame(t, 15)
	g.Deal()

	require.NotNil(t, g.FindPlayer("bob"))
	assert.Nil(t, g.FindPlayer("mallory"))

	card := g.Hands["bob"][0]
	found := g.FindCard("bob", card.ID)
	require.NotNil(t, found)
	assert.Equal(t, card.ID, found.ID)
	assert.Nil(t, g.FindCard("alice", card.ID), "a card lookup never crosses hands")
}

func TestGameStateView(t *testing.T) {
	g, _ := setupTestGame(t, 17)

	view := g.GameState()
	assert.Equal(t, "test-game", view.GameName)
	assert.False(t, view.Started)
	assert.Empty(t, view.CurrentTurn.Player)
	require.Len(t, view.Players, 2)

	g.Deal()
	owner, _ := turnSplit(t, g)
	g.DrawCards(owner)

	view = g.GameState()
	assert.True(t, view.Started)
	assert.Equal(t, owner, view.CurrentTurn.Player)
	assert.Equal(t, 2, view.CurrentTurn.DrawnCount)
	assert.False(t, view.CurrentTurn.HasChosen)
}

func TestPlayerStateView(t *testing.T) {
	g, _ := setupTestGame(t, 19)

	// Before the deal nobody owns the turn.
	st := g.PlayerState("alice")
	require.NotNil(t, st)
	assert.False(t, st.MyTurn)
	assert.Empty(t, st.Hand)

	g.Deal()
	owner, other := turnSplit(t, g)

	st = g.PlayerState(owner)
	require.NotNil(t, st)
	assert.True(t, st.MyTurn)
	assert.Len(t, st.Hand, 5)
	assert.Empty(t, st.Bank)

	st = g.PlayerState(other)
	require.NotNil(t, st)
	assert.False(t, st.MyTurn)

	assert.Nil(t, g.PlayerState("mallory"))
}

func TestConservationAcrossTransitions(t *testing.T) {
	g, _ := setupTestGame(t, 21)
	require.NoError(t, g.Join("carol"))
	g.Players[2].Connected = true
	assertConservation(t, g)

	g.Deal()
	assertConservation(t, g)

	owner, _ := turnSplit(t, g)
	g.DrawCards(owner)
	assertConservation(t, g)

	require.NoError(t, g.ChooseCard(owner, g.Hands[owner][0].ID))
	require.NoError(t, g.PlaceCardBank(owner))
	assertConservation(t, g)
}

func TestConcurrentTransitionsAreSerialized(t *testing.T) {
	g, _ := setupTestGame(t, 23)
	g.Deal()
	owner, other := turnSplit(t, g)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.DrawCards(owner)
			g.DrawCards(other)
		}()
	}
	wg.Wait()

	// Exactly one 2-card draw event happened despite the contention.
	assert.Len(t, g.GetHand(owner), 7)
	assert.Len(t, g.GetHand(other), 5)
	assertConservation(t, g)
}

func playerNames(g *Game) []string {
	names := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		names = append(names, p.Name)
	}
	return names
}
