package models

import (
	"time"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
)

// UserSession is the signed identity issued by the auth service
type UserSession struct {
	DiscordID string    `json:"discord_id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Caller returns the engine identity for the session
func (s *UserSession) Caller() trades.Caller {
	return trades.Caller{ID: s.DiscordID}
}

// ProposeTradeRequest is the body of POST /api/trades
type ProposeTradeRequest struct {
	ReceiverID       string   `json:"receiverId"`
	InitiatorCardIDs []string `json:"initiatorCardIds"`
	ReceiverCardIDs  []string `json:"receiverCardIds"`
}

// RespondTradeRequest is the body of PATCH /api/trades/:id/respond
type RespondTradeRequest struct {
	Accept *bool `json:"accept"`
}

// TradeDTO represents a trade for API clients
type TradeDTO struct {
	ID               string     `json:"id"`
	InitiatorID      string     `json:"initiatorId"`
	ReceiverID       string     `json:"receiverId"`
	InitiatorCardIDs []string   `json:"initiatorCardIds"`
	ReceiverCardIDs  []string   `json:"receiverCardIds"`
	Status           string     `json:"status"`
	RespondedAt      *time.Time `json:"respondedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type TradeEnvelope struct {
	Trade *TradeDTO `json:"trade"`
}

type TradeListEnvelope struct {
	Trades []*TradeDTO `json:"trades"`
}

func NewTradeDTO(t *trades.Trade) *TradeDTO {
	return &TradeDTO{
		ID:               t.ID,
		InitiatorID:      t.InitiatorID,
		ReceiverID:       t.ReceiverID,
		InitiatorCardIDs: nonNil(t.InitiatorItems),
		ReceiverCardIDs:  nonNil(t.ReceiverItems),
		Status:           string(t.Status),
		RespondedAt:      t.RespondedAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func NewTradeList(list []*trades.Trade) *TradeListEnvelope {
	out := make([]*TradeDTO, 0, len(list))
	for _, t := range list {
		out = append(out, NewTradeDTO(t))
	}
	return &TradeListEnvelope{Trades: out}
}

// NotificationDTO represents an inbox entry for API clients
type NotificationDTO struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}

type NotificationEnvelope struct {
	Notification *NotificationDTO `json:"notification"`
}

type NotificationListEnvelope struct {
	Notifications []*NotificationDTO `json:"notifications"`
}

type UnreadCountEnvelope struct {
	Count int `json:"count"`
}

type MarkedReadEnvelope struct {
	Updated int `json:"updated"`
}

func NewNotificationDTO(n *notifications.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:        n.ID,
		Type:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		Metadata:  n.Metadata,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func NewNotificationList(list []*notifications.Notification) *NotificationListEnvelope {
	out := make([]*NotificationDTO, 0, len(list))
	for _, n := range list {
		out = append(out, NewNotificationDTO(n))
	}
	return &NotificationListEnvelope{Notifications: out}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
