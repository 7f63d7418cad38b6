package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Deck struct {
	bun.BaseModel `bun:"table:decks,alias:d"`

	ID        string    `bun:"id,pk"`
	OwnerID   string    `bun:"owner_id,notnull"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type DeckCard struct {
	bun.BaseModel `bun:"table:deck_cards,alias:dc"`

	DeckID     string    `bun:"deck_id,pk"`
	InstanceID string    `bun:"instance_id,pk"`
	AddedAt    time.Time `bun:"added_at,notnull"`
}
