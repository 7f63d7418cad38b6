package notifications

import (
	"context"
	"errors"
	"testing"
)

type memoryRepository struct {
	items []*Notification
}

func (r *memoryRepository) ListByRecipient(_ context.Context, recipientID string, filter ListFilter) ([]*Notification, error) {
	var out []*Notification
	for _, n := range r.items {
		if n.RecipientID != recipientID || (filter.UnreadOnly && n.Read) {
			continue
		}
		if filter.Kind != "" && n.Kind != filter.Kind {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memoryRepository) Get(_ context.Context, id, recipientID string) (*Notification, error) {
	for _, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			return n, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) Delete(_ context.Context, id, recipientID string) error {
	for i, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	list, _ := r.ListByRecipient(ctx, recipientID, ListFilter{UnreadOnly: true})
	return len(list), nil
}

func (r *memoryRepository) MarkRead(_ context.Context, id, recipientID string) error {
	for _, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			n.Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	count := 0
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func newInboxFixture() *Inbox {
	return NewInbox(&memoryRepository{items: []*Notification{
		{ID: "n1", RecipientID: "u1", Kind: KindTradeOffer},
		{ID: "n2", RecipientID: "u1", Kind: KindTradeAccepted, Read: true},
		{ID: "n3", RecipientID: "u2", Kind: KindTradeOffer},
	}})
}

func TestInbox_List(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		filter    ListFilter
		want      int
		wantErr   error
	}{
		{name: "All", recipient: "u1", want: 2},
		{name: "Unread only", recipient: "u1", filter: ListFilter{UnreadOnly: true}, want: 1},
		{name: "By type", recipient: "u1", filter: ListFilter{Kind: KindTradeAccepted}, want: 1},
		{name: "Unread of type", recipient: "u1", filter: ListFilter{UnreadOnly: true, Kind: KindTradeAccepted}, want: 0},
		{name: "Unknown type", recipient: "u1", filter: ListFilter{Kind: "PARTY"}, wantErr: ErrUnknownKind},
		{name: "Other party", recipient: "u3", want: 0},
		{name: "Missing recipient", recipient: "", wantErr: ErrNoRecipient},
	}

	inbox := newInboxFixture()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inbox.List(context.Background(), tt.recipient, tt.filter)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Inbox.List() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("Inbox.List() got = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestInbox_MarkRead(t *testing.T) {
	inbox := newInboxFixture()
	ctx := context.Background()

	if err := inbox.MarkRead(ctx, "n3", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Inbox.MarkRead() foreign notification error = %v, want %v", err, ErrNotFound)
	}
	if err := inbox.MarkRead(ctx, "n1", "u1"); err != nil {
		t.Fatalf("Inbox.MarkRead() error = %v", err)
	}
	count, err := inbox.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatalf("Inbox.UnreadCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Inbox.UnreadCount() got = %d, want 0", count)
	}
}

func TestInbox_MarkAllRead(t *testing.T) {
	inbox := newInboxFixture()
	ctx := context.Background()

	n, err := inbox.MarkAllRead(ctx, "u2")
	if err != nil {
		t.Fatalf("Inbox.MarkAllRead() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Inbox.MarkAllRead() got = %d, want 1", n)
	}
	if n, _ := inbox.MarkAllRead(ctx, "u2"); n != 0 {
		t.Errorf("Inbox.MarkAllRead() second call got = %d, want 0", n)
	}
}

func TestInbox_GetAndDelete(t *testing.T) {
	inbox := newInboxFixture()
	ctx := context.Background()

	if _, err := inbox.Get(ctx, "n3", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Inbox.Get() foreign notification error = %v, want %v", err, ErrNotFound)
	}
	n, err := inbox.Get(ctx, "n1", "u1")
	if err != nil {
		t.Fatalf("Inbox.Get() error = %v", err)
	}
	if n.Kind != KindTradeOffer {
		t.Errorf("Inbox.Get() kind = %s, want %s", n.Kind, KindTradeOffer)
	}

	if err := inbox.Delete(ctx, "n3", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Inbox.Delete() foreign notification error = %v, want %v", err, ErrNotFound)
	}
	if err := inbox.Delete(ctx, "n1", "u1"); err != nil {
		t.Fatalf("Inbox.Delete() error = %v", err)
	}
	if _, err := inbox.Get(ctx, "n1", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Inbox.Get() after delete error = %v, want %v", err, ErrNotFound)
	}
	if list, _ := inbox.List(ctx, "u2", ListFilter{}); len(list) != 1 {
		t.Errorf("other party's inbox got = %d, want 1", len(list))
	}
}
