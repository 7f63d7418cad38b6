package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database/models"
)

type ownershipRepository struct {
	db  bun.IDB
	now func() time.Time
}

var _ trades.OwnershipStore = (*ownershipRepository)(nil)

func NewOwnershipRepository(db bun.IDB) *ownershipRepository {
	return &ownershipRepository{db: db, now: time.Now}
}

func (r *ownershipRepository) Create(ctx context.Context, instance *models.CardInstance) error {
	now := r.now().UTC()
	instance.CreatedAt = now
	instance.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(instance).Exec(ctx); err != nil {
		return mapError(err, "create card instance")
	}
	return nil
}

func (r *ownershipRepository) OwnerOf(ctx context.Context, instanceID string) (string, error) {
	var owner string
	err := r.db.NewSelect().
		Model((*models.CardInstance)(nil)).
		Column("owner_id").
		Where("id = ?", instanceID).
		Scan(ctx, &owner)
	if err != nil {
		return "", mapError(err, fmt.Sprintf("get owner of card instance %s", instanceID))
	}
	return owner, nil
}

// Transfer is a compare-and-swap on owner_id.
func (r *ownershipRepository) Transfer(ctx context.Context, instanceID, expectedFrom, to string) error {
	res, err := r.db.NewUpdate().
		Model((*models.CardInstance)(nil)).
		Set("owner_id = ?", to).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", instanceID).
		Where("owner_id = ?", expectedFrom).
		Exec(ctx)
	if err != nil {
		return mapError(err, "transfer card instance")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	exists, err := r.db.NewSelect().Model((*models.CardInstance)(nil)).Where("id = ?", instanceID).Exists(ctx)
	if err != nil {
		return mapError(err, "check card instance")
	}
	if !exists {
		return fmt.Errorf("card instance %s: %w", instanceID, trades.ErrNotFound)
	}
	return fmt.Errorf("card instance %s is not owned by %s: %w", instanceID, expectedFrom, trades.ErrConflict)
}

func (r *ownershipRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.CardInstance, error) {
	var instances []*models.CardInstance
	err := r.db.NewSelect().
		Model(&instances).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err, "list card instances")
	}
	return instances, nil
}
