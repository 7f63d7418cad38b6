package trades

import (
	"context"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/decks"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
)

//go:generate mockgen -destination=mock/ports.go -package=mock . Notifier,TradeReader

// TradeStore is the write side of the trade table. It is only used inside a
// unit of work.
type TradeStore interface {
	Create(ctx context.Context, t *Trade) error
	// GetForUpdate loads a trade and locks its row where the backend supports it.
	GetForUpdate(ctx context.Context, id string) (*Trade, error)
	// CompareAndSetStatus persists t's status and timestamps only if the stored
	// status still equals expected.
	CompareAndSetStatus(ctx context.Context, t *Trade, expected Status) error
}

type TradeReader interface {
	Get(ctx context.Context, id string) (*Trade, error)
	ListForParty(ctx context.Context, partyID string) ([]*Trade, error)
	ListPending(ctx context.Context, partyID string) ([]*Trade, error)
}

type OwnershipStore interface {
	OwnerOf(ctx context.Context, instanceID string) (string, error)
	// Transfer reassigns instanceID to to if and only if its current owner is
	// expectedFrom. It returns ErrNotFound or ErrConflict otherwise.
	Transfer(ctx context.Context, instanceID, expectedFrom, to string) error
}

type MembershipStore interface {
	MembershipsContaining(ctx context.Context, instanceID string) ([]string, error)
	RemoveInstance(ctx context.Context, grant decks.SystemGrant, deckID, instanceID string) error
}

// Stores are the transactional views handed to a unit of work.
type Stores struct {
	Trades     TradeStore
	Ownership  OwnershipStore
	Membership MembershipStore
}

// UnitOfWork runs fn atomically. fn's error rolls everything back.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

type Notifier interface {
	Notify(ctx context.Context, n notifications.Notification) error
}
