// Package deck builds the standard 106-card deck used by every game.
package deck

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/playdeal/dealer/internal/models"
)

// Size is the number of cards in a freshly built deck.
const Size = 106

// cardDef describes one printing in the standard set: count copies of an
// otherwise identical card, each minted with its own ID.
type cardDef struct {
	name  string
	kind  string
	color string
	value int
	count int
}

// standardSet is the full 106-card set: 20 money, 28 properties,
// 11 property wildcards, 13 rent cards, 34 action cards.
var standardSet = []cardDef{
	// Money
	{"1M", models.KindMoney, "", 1, 6},
	{"2M", models.KindMoney, "", 2, 5},
	{"3M", models.KindMoney, "", 3, 3},
	{"4M", models.KindMoney, "", 4, 3},
	{"5M", models.KindMoney, "", 5, 2},
	{"10M", models.KindMoney, "", 10, 1},

	// Properties
	{"Property", models.KindProperty, "brown", 1, 2},
	{"Property", models.KindProperty, "light_blue", 1, 3},
	{"Property", models.KindProperty, "purple", 2, 3},
	{"Property", models.KindProperty, "orange", 2, 3},
	{"Property", models.KindProperty, "red", 3, 3},
	{"Property", models.KindProperty, "yellow", 3, 3},
	{"Property", models.KindProperty, "green", 4, 3},
	{"Property", models.KindProperty, "dark_blue", 4, 2},
	{"Property", models.KindProperty, "railroad", 2, 4},
	{"Property", models.KindProperty, "utility", 2, 2},

	// Property wildcards
	{"Wild Property", models.KindProperty, "purple/orange", 2, 2},
	{"Wild Property", models.KindProperty, "red/yellow", 3, 2},
	{"Wild Property", models.KindProperty, "light_blue/brown", 1, 1},
	{"Wild Property", models.KindProperty, "light_blue/railroad", 4, 1},
	{"Wild Property", models.KindProperty, "dark_blue/green", 4, 1},
	{"Wild Property", models.KindProperty, "green/railroad", 4, 1},
	{"Wild Property", models.KindProperty, "utility/railroad", 2, 1},
	{"Wild Property", models.KindProperty, "any", 0, 2},

	// Rent
	{"Rent", models.KindRent, "purple/orange", 1, 2},
	{"Rent", models.KindRent, "red/yellow", 1, 2},
	{"Rent", models.KindRent, "green/dark_blue", 1, 2},
	{"Rent", models.KindRent, "brown/light_blue", 1, 2},
	{"Rent", models.KindRent, "railroad/utility", 1, 2},
	{"Wild Rent", models.KindRent, "any", 3, 3},

	// Actions
	{"Pass Go", models.KindAction, "", 1, 10},
	{"Deal Breaker", models.KindAction, "", 5, 2},
	{"Just Say No", models.KindAction, "", 4, 3},
	{"Sly Deal", models.KindAction, "", 3, 3},
	{"Forced Deal", models.KindAction, "", 3, 3},
	{"Debt Collector", models.KindAction, "", 3, 3},
	{"It's My Birthday", models.KindAction, "", 2, 3},
	{"Double The Rent", models.KindAction, "", 1, 2},
	{"House", models.KindAction, "", 3, 3},
	{"Hotel", models.KindAction, "", 4, 2},
}

// NewShuffled mints a fresh standard deck and shuffles it with the supplied
// source. A nil source falls back to a time-seeded one; tests pass a fixed
// seed for deterministic ordering.
func NewShuffled(r *rand.Rand) []*models.Card {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cards := make([]*models.Card, 0, Size)
	for _, def := range standardSet {
		for i := 0; i < def.count; i++ {
			cards = append(cards, &models.Card{
				ID:    uuid.New(),
				Name:  def.name,
				Kind:  def.kind,
				Color: def.color,
				Value: def.value,
			})
		}
	}
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
