package repositories

import (
	"context"
	"fmt"
	"slices"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database/models"
)

type tradeRepository struct {
	db bun.IDB
}

var (
	_ trades.TradeStore  = (*tradeRepository)(nil)
	_ trades.TradeReader = (*tradeRepository)(nil)
)

// NewTradeRepository works on a *bun.DB for reads and on a bun.Tx inside a unit of work.
func NewTradeRepository(db bun.IDB) *tradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) Create(ctx context.Context, t *trades.Trade) error {
	m := toTradeModel(t)
	if _, err := r.db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("trade %s already exists: %w", t.ID, trades.ErrConflict)
		}
		return mapError(err, "create trade")
	}
	return nil
}

func (r *tradeRepository) GetForUpdate(ctx context.Context, id string) (*trades.Trade, error) {
	m := new(models.Trade)
	q := r.db.NewSelect().Model(m).Where("trade_id = ?", id)
	if r.db.Dialect().Name() == dialect.PG {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, mapError(err, "get trade for update")
	}
	return toTrade(m), nil
}

func (r *tradeRepository) CompareAndSetStatus(ctx context.Context, t *trades.Trade, expected trades.Status) error {
	m := toTradeModel(t)
	res, err := r.db.NewUpdate().
		Model((*models.Trade)(nil)).
		Set("status = ?", string(m.Status)).
		Set("responded_at = ?", m.RespondedAt).
		Set("updated_at = ?", m.UpdatedAt).
		Where("trade_id = ?", t.ID).
		Where("status = ?", string(expected)).
		Exec(ctx)
	if err != nil {
		return mapError(err, "update trade status")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	exists, err := r.db.NewSelect().Model((*models.Trade)(nil)).Where("trade_id = ?", t.ID).Exists(ctx)
	if err != nil {
		return mapError(err, "check trade")
	}
	if !exists {
		return fmt.Errorf("trade %s: %w", t.ID, trades.ErrNotFound)
	}
	return fmt.Errorf("trade %s is no longer %s: %w", t.ID, expected, trades.ErrConflict)
}

func (r *tradeRepository) Get(ctx context.Context, id string) (*trades.Trade, error) {
	m := new(models.Trade)
	if err := r.db.NewSelect().Model(m).Where("trade_id = ?", id).Scan(ctx); err != nil {
		return nil, mapError(err, "get trade")
	}
	return toTrade(m), nil
}

func (r *tradeRepository) ListForParty(ctx context.Context, partyID string) ([]*trades.Trade, error) {
	return r.list(ctx, partyID, false)
}

func (r *tradeRepository) ListPending(ctx context.Context, partyID string) ([]*trades.Trade, error) {
	return r.list(ctx, partyID, true)
}

func (r *tradeRepository) list(ctx context.Context, partyID string, pendingOnly bool) ([]*trades.Trade, error) {
	var rows []*models.Trade
	q := r.db.NewSelect().
		Model(&rows).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("initiator_id = ?", partyID).WhereOr("receiver_id = ?", partyID)
		})
	if pendingOnly {
		q = q.Where("status = ?", string(trades.StatusPending))
	}
	if err := q.Order("created_at DESC", "id DESC").Scan(ctx); err != nil {
		return nil, mapError(err, "list trades")
	}

	out := make([]*trades.Trade, 0, len(rows))
	for _, m := range rows {
		out = append(out, toTrade(m))
	}
	return out, nil
}

func toTradeModel(t *trades.Trade) *models.Trade {
	m := &models.Trade{
		TradeID:        t.ID,
		InitiatorID:    t.InitiatorID,
		ReceiverID:     t.ReceiverID,
		InitiatorItems: slices.Clone(t.InitiatorItems),
		ReceiverItems:  slices.Clone(t.ReceiverItems),
		Status:         models.TradeStatus(t.Status),
		CreatedAt:      t.CreatedAt.UTC(),
		UpdatedAt:      t.UpdatedAt.UTC(),
	}
	if t.RespondedAt != nil {
		at := t.RespondedAt.UTC()
		m.RespondedAt = &at
	}
	return m
}

func toTrade(m *models.Trade) *trades.Trade {
	return &trades.Trade{
		ID:             m.TradeID,
		InitiatorID:    m.InitiatorID,
		ReceiverID:     m.ReceiverID,
		InitiatorItems: m.InitiatorItems,
		ReceiverItems:  m.ReceiverItems,
		Status:         trades.Status(m.Status),
		RespondedAt:    m.RespondedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
