package decks

import "time"

// Deck is a curated sub-collection of a party's card instances.
type Deck struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
