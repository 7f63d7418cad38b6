package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database"
)

type unitOfWork struct {
	db   *database.DB
	opts *database.TransactionOptions
}

var _ trades.UnitOfWork = (*unitOfWork)(nil)

// NewUnitOfWork binds the trade, ownership and deck repositories to one
// transaction per call to Within.
func NewUnitOfWork(db *database.DB, isolation sql.IsolationLevel, timeout time.Duration) *unitOfWork {
	return &unitOfWork{
		db: db,
		opts: &database.TransactionOptions{
			IsolationLevel: isolation,
			Timeout:        timeout,
		},
	}
}

func (u *unitOfWork) Within(ctx context.Context, fn func(ctx context.Context, s trades.Stores) error) error {
	err := u.db.WithTransaction(ctx, u.opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, trades.Stores{
			Trades:     NewTradeRepository(tx),
			Ownership:  NewOwnershipRepository(tx),
			Membership: NewDeckRepository(tx),
		})
	})
	if err == nil || trades.KindOf(err) != nil {
		return err
	}
	if isRetryable(err) {
		return mapError(err, "run trade transaction")
	}
	return err
}
