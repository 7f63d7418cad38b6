package notifications

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("notification not found")
	ErrUnknownKind = errors.New("unknown notification type")
)

// ListFilter narrows an inbox listing. The zero value lists everything.
type ListFilter struct {
	UnreadOnly bool
	Kind       Kind
}

// Repository is the persisted side of the inbox. Lookups by id are scoped to
// the recipient and report ErrNotFound for another party's notification.
type Repository interface {
	ListByRecipient(ctx context.Context, recipientID string, filter ListFilter) ([]*Notification, error)
	Get(ctx context.Context, id, recipientID string) (*Notification, error)
	Delete(ctx context.Context, id, recipientID string) error
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}

// Inbox exposes a party's stored notifications.
type Inbox struct {
	repo Repository
}

func NewInbox(repo Repository) *Inbox {
	return &Inbox{repo: repo}
}

func (i *Inbox) List(ctx context.Context, recipientID string, filter ListFilter) ([]*Notification, error) {
	if recipientID == "" {
		return nil, ErrNoRecipient
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, filter.Kind)
	}
	list, err := i.repo.ListByRecipient(ctx, recipientID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// Get fails with ErrNotFound when the notification does not exist or belongs
// to another party.
func (i *Inbox) Get(ctx context.Context, id, recipientID string) (*Notification, error) {
	if recipientID == "" {
		return nil, ErrNoRecipient
	}
	n, err := i.repo.Get(ctx, id, recipientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

func (i *Inbox) Delete(ctx context.Context, id, recipientID string) error {
	if recipientID == "" {
		return ErrNoRecipient
	}
	if err := i.repo.Delete(ctx, id, recipientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (i *Inbox) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	if recipientID == "" {
		return 0, ErrNoRecipient
	}
	count, err := i.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead fails with ErrNotFound when the notification does not exist or
// belongs to another party.
func (i *Inbox) MarkRead(ctx context.Context, id, recipientID string) error {
	if recipientID == "" {
		return ErrNoRecipient
	}
	if err := i.repo.MarkRead(ctx, id, recipientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (i *Inbox) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	if recipientID == "" {
		return 0, ErrNoRecipient
	}
	n, err := i.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}
