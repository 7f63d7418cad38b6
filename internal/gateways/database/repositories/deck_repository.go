package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/decks"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database/models"
)

type deckRepository struct {
	db  bun.IDB
	now func() time.Time
}

var _ trades.MembershipStore = (*deckRepository)(nil)

func NewDeckRepository(db bun.IDB) *deckRepository {
	return &deckRepository{db: db, now: time.Now}
}

func (r *deckRepository) Create(ctx context.Context, deck *decks.Deck) error {
	now := r.now().UTC()
	m := &models.Deck{
		ID:        deck.ID,
		OwnerID:   deck.OwnerID,
		Name:      deck.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return mapError(err, "create deck")
	}
	deck.CreatedAt, deck.UpdatedAt = now, now
	return nil
}

// AddInstance is idempotent.
func (r *deckRepository) AddInstance(ctx context.Context, deckID, instanceID string) error {
	m := &models.DeckCard{DeckID: deckID, InstanceID: instanceID, AddedAt: r.now().UTC()}
	if _, err := r.db.NewInsert().Model(m).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
		return mapError(err, "add card instance to deck")
	}
	return nil
}

func (r *deckRepository) Members(ctx context.Context, deckID string) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.DeckCard)(nil)).
		Column("instance_id").
		Where("deck_id = ?", deckID).
		Order("instance_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, mapError(err, "list deck members")
	}
	return ids, nil
}

func (r *deckRepository) MembershipsContaining(ctx context.Context, instanceID string) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.DeckCard)(nil)).
		Column("deck_id").
		Where("instance_id = ?", instanceID).
		Order("deck_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, mapError(err, "list decks containing card instance")
	}
	return ids, nil
}

// RemoveInstance deletes the membership row regardless of who owns the deck.
// It requires a grant from decks.NewSystemGrant.
func (r *deckRepository) RemoveInstance(ctx context.Context, grant decks.SystemGrant, deckID, instanceID string) error {
	if err := grant.Authorize(); err != nil {
		return err
	}
	res, err := r.db.NewDelete().
		Model((*models.DeckCard)(nil)).
		Where("deck_id = ?", deckID).
		Where("instance_id = ?", instanceID).
		Exec(ctx)
	if err != nil {
		return mapError(err, "remove card instance from deck")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Debug("Card instance removed from deck",
			slog.String("type", "db"),
			slog.String("deck_id", deckID),
			slog.String("instance_id", instanceID),
			slog.String("issuer", grant.Issuer()))
	}
	return nil
}
