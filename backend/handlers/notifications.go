package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/ellavondegurechaff/gohye-trades/backend/models"
	"github.com/ellavondegurechaff/gohye-trades/backend/utils"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
)

// NotificationsList handles GET /api/notifications. ?unread=true keeps unread
// entries, ?type=TRADE_OFFER keeps one notification type.
func NotificationsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := notifications.ListFilter{
			UnreadOnly: c.QueryBool("unread", false),
			Kind:       notifications.Kind(strings.ToUpper(c.Query("type"))),
		}
		list, err := webApp.Inbox.List(c.UserContext(), caller(c).ID, filter)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webmodels.NewNotificationList(list), "")
	}
}

// NotificationsDetail handles GET /api/notifications/:id
func NotificationsDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := webApp.Inbox.Get(c.UserContext(), c.Params("id"), caller(c).ID)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, &webmodels.NotificationEnvelope{Notification: webmodels.NewNotificationDTO(n)}, "")
	}
}

// NotificationsDelete handles DELETE /api/notifications/:id
func NotificationsDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := webApp.Inbox.Delete(c.UserContext(), c.Params("id"), caller(c).ID); err != nil {
			return err
		}
		return utils.SendSuccess(c, nil, "Notification deleted")
	}
}

// NotificationsUnreadCount handles GET /api/notifications/unread-count
func NotificationsUnreadCount(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := webApp.Inbox.UnreadCount(c.UserContext(), caller(c).ID)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, &webmodels.UnreadCountEnvelope{Count: count}, "")
	}
}

// NotificationsMarkRead handles PATCH /api/notifications/:id/read
func NotificationsMarkRead(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := webApp.Inbox.MarkRead(c.UserContext(), c.Params("id"), caller(c).ID); err != nil {
			return err
		}
		return utils.SendSuccess(c, &webmodels.MarkedReadEnvelope{Updated: 1}, "Notification marked as read")
	}
}

// NotificationsMarkAllRead handles PATCH /api/notifications/read-all
func NotificationsMarkAllRead(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		updated, err := webApp.Inbox.MarkAllRead(c.UserContext(), caller(c).ID)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, &webmodels.MarkedReadEnvelope{Updated: updated}, "Notifications marked as read")
	}
}
