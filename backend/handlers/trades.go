package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/ellavondegurechaff/gohye-trades/backend/models"
	"github.com/ellavondegurechaff/gohye-trades/backend/utils"
)

// TradesPropose handles POST /api/trades
func TradesPropose(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.ProposeTradeRequest
		if err := c.BodyParser(&req); err != nil {
			slog.Debug("Invalid trade proposal body", slog.String("error", err.Error()))
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateProposeTradeRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		trade, err := webApp.Trades.Propose(c.UserContext(), caller(c), req.ReceiverID, req.InitiatorCardIDs, req.ReceiverCardIDs)
		if err != nil {
			return err
		}
		return utils.SendCreated(c, &webmodels.TradeEnvelope{Trade: webmodels.NewTradeDTO(trade)}, "Trade proposed")
	}
}

// TradesList handles GET /api/trades
func TradesList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := webApp.Trades.ListForParty(c.UserContext(), caller(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webmodels.NewTradeList(list), "")
	}
}

// TradesPending handles GET /api/trades/pending
func TradesPending(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := webApp.Trades.ListPending(c.UserContext(), caller(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webmodels.NewTradeList(list), "")
	}
}

// TradesDetail handles GET /api/trades/:id
func TradesDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trade, err := webApp.Trades.Get(c.UserContext(), caller(c), c.Params("id"))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, &webmodels.TradeEnvelope{Trade: webmodels.NewTradeDTO(trade)}, "")
	}
}

// TradesRespond handles PATCH /api/trades/:id/respond
func TradesRespond(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.RespondTradeRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateRespondTradeRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		trade, err := webApp.Trades.Respond(c.UserContext(), caller(c), c.Params("id"), *req.Accept)
		if err != nil {
			return err
		}

		message := "Trade rejected"
		if *req.Accept {
			message = "Trade accepted"
		}
		return utils.SendSuccess(c, &webmodels.TradeEnvelope{Trade: webmodels.NewTradeDTO(trade)}, message)
	}
}

// TradesCancel handles PATCH /api/trades/:id/cancel
func TradesCancel(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		trade, err := webApp.Trades.Cancel(c.UserContext(), caller(c), c.Params("id"))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, &webmodels.TradeEnvelope{Trade: webmodels.NewTradeDTO(trade)}, "Trade canceled")
	}
}
