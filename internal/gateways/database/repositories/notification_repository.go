package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database/models"
)

type notificationRepository struct {
	db bun.IDB
}

var (
	_ notifications.Repository = (*notificationRepository)(nil)
	_ notifications.Sink       = (*notificationRepository)(nil)
)

func NewNotificationRepository(db bun.IDB) *notificationRepository {
	return &notificationRepository{db: db}
}

// Deliver stores n in the recipient's inbox.
func (r *notificationRepository) Deliver(ctx context.Context, n notifications.Notification) error {
	m := &models.Notification{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Kind:        string(n.Kind),
		Title:       n.Title,
		Message:     n.Message,
		Metadata:    n.Metadata,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt.UTC(),
		UpdatedAt:   n.UpdatedAt.UTC(),
	}
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, filter notifications.ListFilter) ([]*notifications.Notification, error) {
	var rows []*models.Notification
	q := r.db.NewSelect().
		Model(&rows).
		Where("recipient_id = ?", recipientID)
	if filter.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", string(filter.Kind))
	}
	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*notifications.Notification, 0, len(rows))
	for _, m := range rows {
		out = append(out, toNotification(m))
	}
	return out, nil
}

func (r *notificationRepository) Get(ctx context.Context, id, recipientID string) (*notifications.Notification, error) {
	m := new(models.Notification)
	err := r.db.NewSelect().
		Model(m).
		Where("id = ?", id).
		Where("recipient_id = ?", recipientID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notifications.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return toNotification(m), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, recipientID string) error {
	res, err := r.db.NewDelete().
		Model((*models.Notification)(nil)).
		Where("id = ?", id).
		Where("recipient_id = ?", recipientID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Notification)(nil)).
		Where("recipient_id = ?", recipientID).
		Where("is_read = ?", false).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	res, err := r.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("is_read = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("recipient_id = ?", recipientID).
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notifications.ErrNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("is_read = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("recipient_id = ?", recipientID).
		Where("is_read = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(n), nil
}

func toNotification(m *models.Notification) *notifications.Notification {
	return &notifications.Notification{
		ID:          m.ID,
		RecipientID: m.RecipientID,
		Kind:        notifications.Kind(m.Kind),
		Title:       m.Title,
		Message:     m.Message,
		Metadata:    m.Metadata,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
