package utils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/gohye-trades/backend/models"
)

// MaxCardsPerSide bounds the request body before it reaches the engine
const MaxCardsPerSide = 100

// ValidateProposeTradeRequest checks the shape of a proposal body. Ownership
// and overlap rules belong to the trade engine.
func ValidateProposeTradeRequest(req *models.ProposeTradeRequest) []models.ValidationError {
	var errors []models.ValidationError

	if strings.TrimSpace(req.ReceiverID) == "" {
		errors = append(errors, models.ValidationError{
			Field:   "receiverId",
			Message: "Receiver is required",
		})
	}

	if len(req.InitiatorCardIDs) > MaxCardsPerSide {
		errors = append(errors, models.ValidationError{
			Field:   "initiatorCardIds",
			Message: fmt.Sprintf("At most %d cards may be offered", MaxCardsPerSide),
		})
	}
	if len(req.ReceiverCardIDs) > MaxCardsPerSide {
		errors = append(errors, models.ValidationError{
			Field:   "receiverCardIds",
			Message: fmt.Sprintf("At most %d cards may be requested", MaxCardsPerSide),
		})
	}

	return errors
}

// ValidateRespondTradeRequest checks that the response states a decision
func ValidateRespondTradeRequest(req *models.RespondTradeRequest) []models.ValidationError {
	if req.Accept == nil {
		return []models.ValidationError{{
			Field:   "accept",
			Message: "Accept must be true or false",
		}}
	}
	return nil
}

// HandleValidationErrors converts validation errors to API response
func HandleValidationErrors(c *fiber.Ctx, errors []models.ValidationError) error {
	details := make(map[string]any, len(errors))
	for _, err := range errors {
		details[err.Field] = err.Message
	}
	return SendError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
}
