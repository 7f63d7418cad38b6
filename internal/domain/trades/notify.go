package trades

import (
	"context"
	"log/slog"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
)

// notify hands n to the notifier. The transition has already committed, so a
// failure is only logged.
func (s *Service) notify(ctx context.Context, n notifications.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		s.logger.Warn("Failed to send trade notification",
			slog.String("type", "trade"),
			slog.String("recipient_id", n.RecipientID),
			slog.String("kind", string(n.Kind)),
			slog.Any("trade_id", n.Metadata["trade_id"]),
			slog.String("error", err.Error()))
	}
}

func tradeNotification(t *Trade, recipient string, kind notifications.Kind, title, message string) notifications.Notification {
	return notifications.Notification{
		RecipientID: recipient,
		Kind:        kind,
		Title:       title,
		Message:     message,
		Metadata: map[string]any{
			"trade_id":     t.ID,
			"status":       string(t.Status),
			"initiator_id": t.InitiatorID,
			"receiver_id":  t.ReceiverID,
		},
	}
}

func offerNotification(t *Trade) notifications.Notification {
	return tradeNotification(t, t.ReceiverID, notifications.KindTradeOffer,
		"New Trade Offer", "You have received a new trade offer.")
}

func acceptedNotification(t *Trade) notifications.Notification {
	return tradeNotification(t, t.InitiatorID, notifications.KindTradeAccepted,
		"Trade Accepted", "Your trade offer has been accepted.")
}

func rejectedNotification(t *Trade) notifications.Notification {
	return tradeNotification(t, t.InitiatorID, notifications.KindTradeRejected,
		"Trade Rejected", "Your trade offer has been rejected.")
}

func canceledNotification(t *Trade) notifications.Notification {
	return tradeNotification(t, t.ReceiverID, notifications.KindTradeCancelled,
		"Trade Canceled", "A trade offer has been canceled.")
}
