package game

import "errors"

// Rule violations returned by game transitions. Every one of them is caused
// by an ordering or ownership mistake on the caller's side, never by a
// transient condition, so retrying is never appropriate.
var (
	// ErrGameExists is returned by the store when a game name is already taken.
	ErrGameExists = errors.New("game name already registered")

	// ErrGameStarted is returned when a non-member tries to join after the deal.
	ErrGameStarted = errors.New("game already started")

	// ErrNotYourTurn is returned when a player acts outside their turn.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrDrawCardsRequired is returned when a player chooses before drawing.
	ErrDrawCardsRequired = errors.New("draw cards before choosing")

	// ErrChooseCardRequired is returned when a player places with nothing staged.
	ErrChooseCardRequired = errors.New("choose a card before placing")

	// ErrCardNotFound is returned when the chosen id is absent from the
	// player's hand.
	ErrCardNotFound = errors.New("card not in hand")
)
