package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database/models"
)

var tables = []any{
	(*models.CardInstance)(nil),
	(*models.Deck)(nil),
	(*models.DeckCard)(nil),
	(*models.Trade)(nil),
	(*models.Notification)(nil),
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_card_instances_owner_id ON card_instances(owner_id);",
	"CREATE INDEX IF NOT EXISTS idx_decks_owner_id ON decks(owner_id);",
	"CREATE INDEX IF NOT EXISTS idx_deck_cards_instance_id ON deck_cards(instance_id);",
	"CREATE INDEX IF NOT EXISTS idx_trades_initiator_id ON trades(initiator_id, created_at);",
	"CREATE INDEX IF NOT EXISTS idx_trades_receiver_id ON trades(receiver_id, created_at);",
	"CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);",
	"CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, is_read);",
}

// InitializeSchema creates all tables and indexes. It is safe to run on every start.
func (db *DB) InitializeSchema(ctx context.Context) error {
	for _, model := range tables {
		if _, err := db.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	slog.Info("Database schema initialized",
		slog.String("type", "db"),
		slog.String("dialect", db.bunDB.Dialect().Name().String()),
		slog.Int("tables", len(tables)),
		slog.Int("indexes", len(indexes)))
	return nil
}
