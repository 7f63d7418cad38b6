package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID          string         `bun:"id,pk"`
	RecipientID string         `bun:"recipient_id,notnull"`
	Kind        string         `bun:"kind,notnull"`
	Title       string         `bun:"title,notnull"`
	Message     string         `bun:"message,notnull"`
	Metadata    map[string]any `bun:"metadata"`
	Read        bool           `bun:"is_read,notnull"`
	CreatedAt   time.Time      `bun:"created_at,notnull"`
	UpdatedAt   time.Time      `bun:"updated_at,notnull"`
}
