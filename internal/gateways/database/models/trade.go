package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TradeStatus string

const (
	TradeStatusPending  TradeStatus = "pending"
	TradeStatusAccepted TradeStatus = "accepted"
	TradeStatusRejected TradeStatus = "rejected"
	TradeStatusCanceled TradeStatus = "canceled"
)

type Trade struct {
	bun.BaseModel `bun:"table:trades,alias:t"`

	ID             int64       `bun:"id,pk,autoincrement"`
	TradeID        string      `bun:"trade_id,unique,notnull"`
	InitiatorID    string      `bun:"initiator_id,notnull"`
	ReceiverID     string      `bun:"receiver_id,notnull"`
	InitiatorItems []string    `bun:"initiator_items,notnull"`
	ReceiverItems  []string    `bun:"receiver_items,notnull"`
	Status         TradeStatus `bun:"status,notnull"`
	RespondedAt    *time.Time  `bun:"responded_at,nullzero"`
	CreatedAt      time.Time   `bun:"created_at,notnull"`
	UpdatedAt      time.Time   `bun:"updated_at,notnull"`
}
