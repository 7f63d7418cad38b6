package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ellavondegurechaff/gohye-trades/backend/utils"
)

// CallerRateLimit allows max requests per window for each authenticated
// caller, falling back to the client IP. It must run after AuthRequired.
func CallerRateLimit(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		KeyGenerator:      callerKey,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c *fiber.Ctx) error {
			slog.Warn("Rate limit exceeded",
				slog.String("type", "http"),
				slog.String("key", callerKey(c)),
				slog.String("path", c.Path()),
				slog.String("method", c.Method()),
				slog.Int("limit", max),
				slog.Duration("window", window))

			return utils.SendTooManyRequests(c, "Too many trade proposals. Please try again later.")
		},
	})
}

func callerKey(c *fiber.Ctx) string {
	if session, ok := utils.ExtractUserSession(c); ok && session.DiscordID != "" {
		return "user:" + session.DiscordID
	}
	return "ip:" + utils.GetIPAddress(c)
}
