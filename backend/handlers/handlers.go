package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/ellavondegurechaff/gohye-trades/backend/models"
	webservices "github.com/ellavondegurechaff/gohye-trades/backend/services"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
)

// TradeService is the trade engine as seen by the HTTP layer
type TradeService interface {
	Propose(ctx context.Context, caller trades.Caller, receiverID string, initiatorItems, receiverItems []string) (*trades.Trade, error)
	Respond(ctx context.Context, caller trades.Caller, tradeID string, accept bool) (*trades.Trade, error)
	Cancel(ctx context.Context, caller trades.Caller, tradeID string) (*trades.Trade, error)
	Get(ctx context.Context, caller trades.Caller, tradeID string) (*trades.Trade, error)
	ListForParty(ctx context.Context, caller trades.Caller) ([]*trades.Trade, error)
	ListPending(ctx context.Context, caller trades.Caller) ([]*trades.Trade, error)
}

// InboxService serves a party's persisted notifications
type InboxService interface {
	List(ctx context.Context, recipientID string, filter notifications.ListFilter) ([]*notifications.Notification, error)
	Get(ctx context.Context, id, recipientID string) (*notifications.Notification, error)
	Delete(ctx context.Context, id, recipientID string) error
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}

// Pinger reports storage reachability for /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// WebApp represents the web application with all dependencies
type WebApp struct {
	Trades         TradeService
	Inbox          InboxService
	DB             Pinger
	SessionService *webservices.SessionService
	Version        string
	Commit         string
}

// GetSession returns the verified session for the request
func (w *WebApp) GetSession(c *fiber.Ctx) (*webmodels.UserSession, error) {
	return w.SessionService.GetSession(c)
}

// caller returns the identity stored by the auth middleware. Routes behind
// AuthRequired always have one.
func caller(c *fiber.Ctx) trades.Caller {
	session, ok := c.Locals("user").(*webmodels.UserSession)
	if !ok {
		return trades.Caller{}
	}
	return session.Caller()
}
