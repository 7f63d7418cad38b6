package trades

import (
	"context"
	"errors"
	"fmt"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/decks"
)

// verifyOwnership checks that partyID owns every instance in items, in order.
func verifyOwnership(ctx context.Context, store OwnershipStore, partyID string, items []string) error {
	for _, id := range items {
		owner, err := store.OwnerOf(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return newError(ErrNotFound, "", "card instance %s does not exist", id).withInstance(id)
			}
			return fmt.Errorf("failed to look up owner of card instance %s: %w", id, err)
		}
		if owner != partyID {
			return newError(ErrPermissionDenied, "", "card with ID %s does not belong to user %s", id, partyID).withInstance(id)
		}
	}
	return nil
}

// stripMemberships removes every instance from every deck holding it.
// Instances in no deck are skipped.
func stripMemberships(ctx context.Context, store MembershipStore, grant decks.SystemGrant, items []string) error {
	for _, id := range items {
		deckIDs, err := store.MembershipsContaining(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list decks containing card instance %s: %w", id, err)
		}
		for _, deckID := range deckIDs {
			if err := store.RemoveInstance(ctx, grant, deckID, id); err != nil {
				if errors.Is(err, decks.ErrInvalidGrant) {
					return &Error{Kind: ErrPermissionDenied, InstanceID: id, Msg: "membership store rejected the system grant", Err: err}
				}
				return fmt.Errorf("failed to remove card instance %s from deck %s: %w", id, deckID, err)
			}
		}
	}
	return nil
}

// exchange swaps ownership of both item lists. Any drift since the proposal,
// including a vanished instance, is a conflict and aborts the whole exchange.
func exchange(ctx context.Context, store OwnershipStore, t *Trade) error {
	legs := []struct {
		items    []string
		from, to string
	}{
		{t.InitiatorItems, t.InitiatorID, t.ReceiverID},
		{t.ReceiverItems, t.ReceiverID, t.InitiatorID},
	}
	for _, leg := range legs {
		for _, id := range leg.items {
			err := store.Transfer(ctx, id, leg.from, leg.to)
			if err == nil {
				continue
			}
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
				return newError(ErrConflict, "", "card instance %s is no longer owned by %s", id, leg.from).
					withTrade(t.ID).
					withInstance(id).
					withStatus(t.Status)
			}
			return fmt.Errorf("failed to transfer card instance %s: %w", id, err)
		}
	}
	return nil
}
