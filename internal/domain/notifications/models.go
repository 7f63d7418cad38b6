package notifications

import "time"

type Kind string

const (
	KindSystem         Kind = "SYSTEM"
	KindTradeOffer     Kind = "TRADE_OFFER"
	KindTradeAccepted  Kind = "TRADE_ACCEPTED"
	KindTradeRejected  Kind = "TRADE_REJECTED"
	KindTradeCancelled Kind = "TRADE_CANCELLED"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSystem, KindTradeOffer, KindTradeAccepted, KindTradeRejected, KindTradeCancelled:
		return true
	}
	return false
}

// Notification is a single message addressed to one party.
type Notification struct {
	ID          string
	RecipientID string
	Kind        Kind
	Title       string
	Message     string
	Metadata    map[string]any
	Read        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
