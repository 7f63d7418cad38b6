package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CardInstance is one owned copy of a catalog card.
type CardInstance struct {
	bun.BaseModel `bun:"table:card_instances,alias:ci"`

	ID        string    `bun:"id,pk"`
	CardID    int64     `bun:"card_id,notnull"`
	OwnerID   string    `bun:"owner_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
