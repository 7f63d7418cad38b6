package trades

import (
	"slices"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusCanceled Status = "canceled"
)

func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusCanceled
}

func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// Caller is the authenticated party invoking an operation.
type Caller struct {
	ID string
}

// Trade is a proposal to exchange InitiatorItems for ReceiverItems.
// Item lists never change after creation.
type Trade struct {
	ID             string
	InitiatorID    string
	ReceiverID     string
	InitiatorItems []string
	ReceiverItems  []string
	Status         Status
	RespondedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Items returns every instance the trade references, initiator side first.
func (t *Trade) Items() []string {
	items := make([]string, 0, len(t.InitiatorItems)+len(t.ReceiverItems))
	items = append(items, t.InitiatorItems...)
	return append(items, t.ReceiverItems...)
}

func (t *Trade) Involves(partyID string) bool {
	return t.InitiatorID == partyID || t.ReceiverID == partyID
}

func (t *Trade) Clone() *Trade {
	if t == nil {
		return nil
	}
	c := *t
	c.InitiatorItems = slices.Clone(t.InitiatorItems)
	c.ReceiverItems = slices.Clone(t.ReceiverItems)
	if t.RespondedAt != nil {
		at := *t.RespondedAt
		c.RespondedAt = &at
	}
	return &c
}

// transition moves a pending trade to a terminal status.
func (t *Trade) transition(to Status, at time.Time) *Error {
	if t.Status != StatusPending {
		return newError(ErrInvalidState, "", "trade %s is already %s", t.ID, t.Status).withTrade(t.ID).withStatus(t.Status)
	}
	if !to.Terminal() {
		return newError(ErrInvalidArgument, "", "cannot move trade %s to %s", t.ID, to).withTrade(t.ID)
	}
	t.Status = to
	t.RespondedAt = &at
	t.UpdatedAt = at
	return nil
}
