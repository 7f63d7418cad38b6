package trades_test

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/decks"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
)

// world is an in-memory backend. Within holds the lock for the whole unit of
// work and restores a snapshot when fn fails.
type world struct {
	mu     sync.Mutex
	trades map[string]*trades.Trade
	order  []string
	owners map[string]string
	decks  map[string][]string

	failCreate error
	grants     []decks.SystemGrant
}

func newWorld(owners map[string]string) *world {
	return &world{
		trades: map[string]*trades.Trade{},
		owners: owners,
		decks:  map[string][]string{},
	}
}

type snapshot struct {
	trades map[string]*trades.Trade
	order  []string
	owners map[string]string
	decks  map[string][]string
}

func (w *world) snapshot() snapshot {
	s := snapshot{
		trades: make(map[string]*trades.Trade, len(w.trades)),
		order:  slices.Clone(w.order),
		owners: maps.Clone(w.owners),
		decks:  make(map[string][]string, len(w.decks)),
	}
	for id, t := range w.trades {
		s.trades[id] = t.Clone()
	}
	for id, members := range w.decks {
		s.decks[id] = slices.Clone(members)
	}
	return s
}

func (w *world) restore(s snapshot) {
	w.trades, w.order, w.owners, w.decks = s.trades, s.order, s.owners, s.decks
}

func (w *world) Within(ctx context.Context, fn func(ctx context.Context, s trades.Stores) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := w.snapshot()
	stores := trades.Stores{
		Trades:     tradeStore{w},
		Ownership:  ownershipStore{w},
		Membership: membershipStore{w},
	}
	if err := fn(ctx, stores); err != nil {
		w.restore(snap)
		return err
	}
	return nil
}

func (w *world) ownerOf(id string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.owners[id]
}

func (w *world) deck(id string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.decks[id])
}

func (w *world) setOwner(id, owner string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if owner == "" {
		delete(w.owners, id)
		return
	}
	w.owners[id] = owner
}

func (w *world) tradeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.trades)
}

func (w *world) Get(_ context.Context, id string) (*trades.Trade, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.trades[id]
	if !ok {
		return nil, trades.ErrNotFound
	}
	return t.Clone(), nil
}

func (w *world) ListForParty(_ context.Context, partyID string) ([]*trades.Trade, error) {
	return w.list(partyID, false), nil
}

func (w *world) ListPending(_ context.Context, partyID string) ([]*trades.Trade, error) {
	return w.list(partyID, true), nil
}

func (w *world) list(partyID string, pendingOnly bool) []*trades.Trade {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*trades.Trade
	for i := len(w.order) - 1; i >= 0; i-- {
		t := w.trades[w.order[i]]
		if !t.Involves(partyID) || (pendingOnly && t.Status != trades.StatusPending) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

type tradeStore struct{ w *world }

func (s tradeStore) Create(_ context.Context, t *trades.Trade) error {
	if s.w.failCreate != nil {
		return s.w.failCreate
	}
	s.w.trades[t.ID] = t.Clone()
	s.w.order = append(s.w.order, t.ID)
	return nil
}

func (s tradeStore) GetForUpdate(_ context.Context, id string) (*trades.Trade, error) {
	t, ok := s.w.trades[id]
	if !ok {
		return nil, trades.ErrNotFound
	}
	return t.Clone(), nil
}

func (s tradeStore) CompareAndSetStatus(_ context.Context, t *trades.Trade, expected trades.Status) error {
	stored, ok := s.w.trades[t.ID]
	if !ok {
		return trades.ErrNotFound
	}
	if stored.Status != expected {
		return trades.ErrConflict
	}
	s.w.trades[t.ID] = t.Clone()
	return nil
}

type ownershipStore struct{ w *world }

func (s ownershipStore) OwnerOf(_ context.Context, id string) (string, error) {
	owner, ok := s.w.owners[id]
	if !ok {
		return "", trades.ErrNotFound
	}
	return owner, nil
}

func (s ownershipStore) Transfer(_ context.Context, id, from, to string) error {
	owner, ok := s.w.owners[id]
	if !ok {
		return trades.ErrNotFound
	}
	if owner != from {
		return trades.ErrConflict
	}
	s.w.owners[id] = to
	return nil
}

type membershipStore struct{ w *world }

func (s membershipStore) MembershipsContaining(_ context.Context, id string) ([]string, error) {
	var out []string
	for deckID, members := range s.w.decks {
		if slices.Contains(members, id) {
			out = append(out, deckID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s membershipStore) RemoveInstance(_ context.Context, grant decks.SystemGrant, deckID, id string) error {
	if err := grant.Authorize(); err != nil {
		return err
	}
	s.w.grants = append(s.w.grants, grant)
	s.w.decks[deckID] = slices.DeleteFunc(s.w.decks[deckID], func(m string) bool { return m == id })
	return nil
}
