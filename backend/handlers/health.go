package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/ellavondegurechaff/gohye-trades/backend/models"
	"github.com/ellavondegurechaff/gohye-trades/backend/utils"
)

const healthTimeout = 3 * time.Second

// HealthCheck handles GET /health
func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Version, webApp.Commit)

		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		start := time.Now()
		if err := webApp.DB.Ping(ctx); err != nil {
			slog.Error("Health check: database unreachable",
				slog.String("type", "db"),
				slog.String("error", err.Error()))
			health.AddComponent("database", "unhealthy", err.Error(), nil)
		} else {
			health.AddComponent("database", "healthy", "", map[string]interface{}{
				"latency_ms": time.Since(start).Milliseconds(),
			})
		}

		status := fiber.StatusOK
		if !health.Healthy() {
			status = fiber.StatusServiceUnavailable
		}
		return utils.SendJSON(c, status, health)
	}
}
