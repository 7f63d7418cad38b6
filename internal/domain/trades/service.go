package trades

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/decks"
)

const (
	tracerName       = "github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
	grantIssuer      = "trade-engine"
	defaultCacheSize = 1024
)

// Service runs trade proposals through their lifecycle.
type Service struct {
	uow      UnitOfWork
	reader   TradeReader
	notifier Notifier
	grant    decks.SystemGrant

	cacheSize int
	cache     *lru.Cache

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	tracer trace.Tracer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCacheSize bounds the terminal trade cache. Zero disables it.
func WithCacheSize(size int) Option {
	return func(s *Service) { s.cacheSize = size }
}

func NewService(uow UnitOfWork, reader TradeReader, notifier Notifier, opts ...Option) (*Service, error) {
	s := &Service{
		uow:       uow,
		reader:    reader,
		notifier:  notifier,
		grant:     decks.NewSystemGrant(grantIssuer),
		cacheSize: defaultCacheSize,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cacheSize > 0 {
		cache, err := lru.New(s.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create trade cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Propose validates and persists a new pending trade from caller to receiverID.
func (s *Service) Propose(ctx context.Context, caller Caller, receiverID string, initiatorItems, receiverItems []string) (*Trade, error) {
	const op = "trades.Propose"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("trade.initiator_id", caller.ID),
		attribute.String("trade.receiver_id", receiverID),
		attribute.Int("trade.initiator_items", len(initiatorItems)),
		attribute.Int("trade.receiver_items", len(receiverItems)),
	))
	defer span.End()

	if err := validateProposal(caller, receiverID, initiatorItems, receiverItems); err != nil {
		return nil, s.fail(span, withOp(op, err, "validate proposal"))
	}
	if err := ctx.Err(); err != nil {
		return nil, s.fail(span, err)
	}

	now := s.now()
	t := &Trade{
		ID:             s.newID(),
		InitiatorID:    caller.ID,
		ReceiverID:     receiverID,
		InitiatorItems: slices.Clone(initiatorItems),
		ReceiverItems:  slices.Clone(receiverItems),
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.uow.Within(ctx, func(ctx context.Context, st Stores) error {
		if err := verifyOwnership(ctx, st.Ownership, t.InitiatorID, t.InitiatorItems); err != nil {
			return err
		}
		if err := verifyOwnership(ctx, st.Ownership, t.ReceiverID, t.ReceiverItems); err != nil {
			return err
		}
		if err := stripMemberships(ctx, st.Membership, s.grant, t.Items()); err != nil {
			return err
		}
		return st.Trades.Create(ctx, t)
	})
	if err != nil {
		return nil, s.fail(span, withOp(op, err, "propose trade"))
	}

	span.SetAttributes(attribute.String("trade.id", t.ID))
	s.logger.Info("Trade proposed",
		slog.String("type", "trade"),
		slog.String("trade_id", t.ID),
		slog.String("initiator_id", t.InitiatorID),
		slog.String("receiver_id", t.ReceiverID),
		slog.Int("items", len(t.InitiatorItems)+len(t.ReceiverItems)))

	s.notify(ctx, offerNotification(t))
	return t.Clone(), nil
}

// Respond accepts or rejects a pending trade on behalf of its receiver.
// Accepting swaps ownership of every listed instance in the same transaction
// that records the new status.
func (s *Service) Respond(ctx context.Context, caller Caller, tradeID string, accept bool) (*Trade, error) {
	const op = "trades.Respond"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("trade.id", tradeID),
		attribute.String("trade.responder_id", caller.ID),
		attribute.Bool("trade.accept", accept),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, s.fail(span, err)
	}

	target := StatusRejected
	if accept {
		target = StatusAccepted
	}

	var updated *Trade
	err := s.uow.Within(ctx, func(ctx context.Context, st Stores) error {
		t, err := loadPending(ctx, st.Trades, tradeID, func(t *Trade) bool { return t.ReceiverID == caller.ID },
			"only the trade receiver can respond to this trade")
		if err != nil {
			return err
		}
		if err := stripMemberships(ctx, st.Membership, s.grant, t.Items()); err != nil {
			return err
		}
		if accept {
			if err := exchange(ctx, st.Ownership, t); err != nil {
				return err
			}
		}
		if err := s.finish(ctx, st.Trades, t, target); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, s.fail(span, withOp(op, err, "respond to trade"))
	}

	s.settled(updated)
	if accept {
		s.notify(ctx, acceptedNotification(updated))
	} else {
		s.notify(ctx, rejectedNotification(updated))
	}
	return updated.Clone(), nil
}

// Cancel withdraws a pending trade on behalf of its initiator.
func (s *Service) Cancel(ctx context.Context, caller Caller, tradeID string) (*Trade, error) {
	const op = "trades.Cancel"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("trade.id", tradeID),
		attribute.String("trade.canceler_id", caller.ID),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, s.fail(span, err)
	}

	var updated *Trade
	err := s.uow.Within(ctx, func(ctx context.Context, st Stores) error {
		t, err := loadPending(ctx, st.Trades, tradeID, func(t *Trade) bool { return t.InitiatorID == caller.ID },
			"only the trade initiator can cancel this trade")
		if err != nil {
			return err
		}
		if err := s.finish(ctx, st.Trades, t, StatusCanceled); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, s.fail(span, withOp(op, err, "cancel trade"))
	}

	s.settled(updated)
	s.notify(ctx, canceledNotification(updated))
	return updated.Clone(), nil
}

// Get returns a trade visible to caller. Terminal trades may come from cache.
func (s *Service) Get(ctx context.Context, caller Caller, tradeID string) (*Trade, error) {
	const op = "trades.Get"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("trade.id", tradeID)))
	defer span.End()

	t, cached := s.cached(tradeID)
	if !cached {
		var err error
		t, err = s.reader.Get(ctx, tradeID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				err = newError(ErrNotFound, "", "trade %s not found", tradeID).withTrade(tradeID)
			}
			return nil, s.fail(span, withOp(op, err, "get trade"))
		}
		if t.Status.Terminal() {
			s.remember(t)
		}
	}
	span.SetAttributes(attribute.Bool("trade.cached", cached))

	if !t.Involves(caller.ID) {
		return nil, s.fail(span, newError(ErrPermissionDenied, op, "user %s is not a party to trade %s", caller.ID, tradeID).withTrade(tradeID))
	}
	return t.Clone(), nil
}

// ListForParty returns every trade caller takes part in, newest first.
func (s *Service) ListForParty(ctx context.Context, caller Caller) ([]*Trade, error) {
	const op = "trades.ListForParty"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("trade.party_id", caller.ID)))
	defer span.End()

	if caller.ID == "" {
		return nil, s.fail(span, newError(ErrPermissionDenied, op, "caller is not authenticated"))
	}
	list, err := s.reader.ListForParty(ctx, caller.ID)
	if err != nil {
		return nil, s.fail(span, withOp(op, err, "list trades"))
	}
	return list, nil
}

// ListPending returns caller's pending trades, newest first.
func (s *Service) ListPending(ctx context.Context, caller Caller) ([]*Trade, error) {
	const op = "trades.ListPending"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("trade.party_id", caller.ID)))
	defer span.End()

	if caller.ID == "" {
		return nil, s.fail(span, newError(ErrPermissionDenied, op, "caller is not authenticated"))
	}
	list, err := s.reader.ListPending(ctx, caller.ID)
	if err != nil {
		return nil, s.fail(span, withOp(op, err, "list pending trades"))
	}
	return list, nil
}

// loadPending locks the trade and checks, in order, that it exists, that
// allowed accepts the caller and that it is still pending.
func loadPending(ctx context.Context, store TradeStore, tradeID string, allowed func(*Trade) bool, deniedMsg string) (*Trade, error) {
	t, err := store.GetForUpdate(ctx, tradeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(ErrNotFound, "", "trade %s not found", tradeID).withTrade(tradeID)
		}
		return nil, fmt.Errorf("failed to load trade %s: %w", tradeID, err)
	}
	if !allowed(t) {
		return nil, newError(ErrPermissionDenied, "", "%s", deniedMsg).withTrade(tradeID).withStatus(t.Status)
	}
	if t.Status != StatusPending {
		return nil, newError(ErrInvalidState, "", "trade %s is already %s", t.ID, t.Status).withTrade(t.ID).withStatus(t.Status)
	}
	return t, nil
}

// finish applies the terminal transition and persists it against the
// pending row only.
func (s *Service) finish(ctx context.Context, store TradeStore, t *Trade, to Status) error {
	if err := t.transition(to, s.now()); err != nil {
		return err
	}
	if err := store.CompareAndSetStatus(ctx, t, StatusPending); err != nil {
		if KindOf(err) != nil {
			return err
		}
		return fmt.Errorf("failed to update trade %s: %w", t.ID, err)
	}
	return nil
}

func (s *Service) settled(t *Trade) {
	s.remember(t)
	s.logger.Info("Trade settled",
		slog.String("type", "trade"),
		slog.String("trade_id", t.ID),
		slog.String("status", string(t.Status)),
		slog.String("initiator_id", t.InitiatorID),
		slog.String("receiver_id", t.ReceiverID))
}

func (s *Service) cached(id string) (*Trade, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Trade), true
}

func (s *Service) remember(t *Trade) {
	if s.cache == nil || !t.Status.Terminal() {
		return
	}
	s.cache.Add(t.ID, t.Clone())
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func validateProposal(caller Caller, receiverID string, initiatorItems, receiverItems []string) error {
	switch {
	case caller.ID == "":
		return newError(ErrPermissionDenied, "", "caller is not authenticated")
	case receiverID == "":
		return newError(ErrInvalidArgument, "", "receiver is required")
	case receiverID == caller.ID:
		return newError(ErrInvalidArgument, "", "cannot trade with yourself")
	case len(initiatorItems) == 0:
		return newError(ErrInvalidArgument, "", "initiator items must not be empty")
	case len(receiverItems) == 0:
		return newError(ErrInvalidArgument, "", "receiver items must not be empty")
	}

	seen := make(map[string]bool, len(initiatorItems))
	for _, id := range initiatorItems {
		if id == "" {
			return newError(ErrInvalidArgument, "", "card instance id must not be empty")
		}
		if seen[id] {
			return newError(ErrInvalidArgument, "", "card instance %s is listed twice", id).withInstance(id)
		}
		seen[id] = true
	}
	other := make(map[string]bool, len(receiverItems))
	for _, id := range receiverItems {
		if id == "" {
			return newError(ErrInvalidArgument, "", "card instance id must not be empty")
		}
		if seen[id] {
			return newError(ErrInvalidArgument, "", "card instance %s appears on both sides", id).withInstance(id)
		}
		if other[id] {
			return newError(ErrInvalidArgument, "", "card instance %s is listed twice", id).withInstance(id)
		}
		other[id] = true
	}
	return nil
}
