package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/gohye-trades/backend/handlers"
	"github.com/ellavondegurechaff/gohye-trades/backend/utils"
)

// AuthRequired middleware ensures the caller presents a valid session
func AuthRequired(webApp *handlers.WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := webApp.GetSession(c)
		if err != nil {
			slog.Debug("Auth required: no valid session",
				slog.String("type", "http"),
				slog.String("path", c.Path()),
				slog.String("error", err.Error()))
			return utils.SendUnauthorized(c, "Authentication required")
		}

		// Store user in context
		c.Locals("user", session)

		slog.Debug("Auth middleware: user authenticated",
			slog.String("discord_id", session.DiscordID),
			slog.String("username", session.Username))

		return c.Next()
	}
}
