package models

import "github.com/google/uuid"

// Card kinds.
const (
	KindMoney    = "money"
	KindProperty = "property"
	KindAction   = "action"
	KindRent     = "rent"
)

// Card is a single card in play. Cards are immutable once created; identity
// is by ID only, never by attributes (two cards with the same name are still
// distinct cards).
type Card struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Kind  string    `json:"kind"`
	Color string    `json:"color,omitempty"` // property/rent family, "any" for wildcards
	Value int       `json:"value"`           // banked monetary value
}
