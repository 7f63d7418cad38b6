package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	webmodels "github.com/ellavondegurechaff/gohye-trades/backend/models"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/notifications"
	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
)

var timeNow = time.Now

const (
	CodeTradeNotFound        = "TRADE_NOT_FOUND"
	CodeTradeForbidden       = "TRADE_FORBIDDEN"
	CodeTradeBadInput        = "TRADE_BAD_INPUT"
	CodeTradeInvalidState    = "TRADE_INVALID_STATE"
	CodeTradeConflict        = "TRADE_CONFLICT"
	CodeTradeInternal        = "TRADE_INTERNAL"
	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
	CodeNotificationBadType  = "NOTIFICATION_BAD_TYPE"
	CodeRequestTimeout       = "REQUEST_TIMEOUT"
)

// ErrorHandler renders handler errors as APIResponse envelopes. Domain errors
// are classified through go-errors first.
func ErrorHandler(c *fiber.Ctx, err error) error {
	rich := ToServiceError(err)

	if rich.Code >= http.StatusInternalServerError {
		slog.Error("Request failed",
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}

	message := rich.Message
	if rich.Code >= http.StatusInternalServerError && rich.TextCode == CodeTradeInternal {
		message = "Internal Server Error"
	}

	return c.Status(rich.Code).JSON(&webmodels.APIResponse{
		Success: false,
		Error: &webmodels.APIError{
			Code:     rich.TextCode,
			Message:  message,
			Category: fmt.Sprint(rich.Category),
			Details:  rich.Metadata,
		},
		Timestamp: timeNow(),
	})
}

// ToServiceError classifies err into a go-errors envelope with an HTTP status
// and text code.
func ToServiceError(err error) *goerrors.Error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return goerrors.New(fiberErr.Message, categoryForStatus(fiberErr.Code)).
			WithCode(fiberErr.Code).
			WithTextCode(strings.ToUpper(strings.ReplaceAll(http.StatusText(fiberErr.Code), " ", "_")))
	}

	if errors.Is(err, notifications.ErrNotFound) {
		return goerrors.New("notification not found", goerrors.CategoryNotFound).
			WithCode(http.StatusNotFound).
			WithTextCode(CodeNotificationNotFound)
	}

	if errors.Is(err, notifications.ErrUnknownKind) {
		return goerrors.New(err.Error(), goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(CodeNotificationBadType)
	}

	if kind := trades.KindOf(err); kind != nil {
		return tradeError(err, kind)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "request timed out").
			WithCode(http.StatusGatewayTimeout).
			WithTextCode(CodeRequestTimeout)
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
		WithCode(http.StatusInternalServerError).
		WithTextCode(CodeTradeInternal)
}

func tradeError(err, kind error) *goerrors.Error {
	var (
		category goerrors.Category
		code     int
		textCode string
	)
	switch kind {
	case trades.ErrNotFound:
		category, code, textCode = goerrors.CategoryNotFound, http.StatusNotFound, CodeTradeNotFound
	case trades.ErrPermissionDenied:
		category, code, textCode = goerrors.CategoryAuthz, http.StatusForbidden, CodeTradeForbidden
	case trades.ErrInvalidArgument:
		category, code, textCode = goerrors.CategoryBadInput, http.StatusBadRequest, CodeTradeBadInput
	case trades.ErrInvalidState:
		category, code, textCode = goerrors.CategoryConflict, http.StatusConflict, CodeTradeInvalidState
	default:
		category, code, textCode = goerrors.CategoryConflict, http.StatusConflict, CodeTradeConflict
	}

	message := kind.Error()
	metadata := map[string]any{}
	var tradeErr *trades.Error
	if errors.As(err, &tradeErr) {
		if tradeErr.Msg != "" {
			message = tradeErr.Msg
		}
		if tradeErr.TradeID != "" {
			metadata["trade_id"] = tradeErr.TradeID
		}
		if tradeErr.InstanceID != "" {
			metadata["instance_id"] = tradeErr.InstanceID
		}
		if tradeErr.Status != "" {
			metadata["status"] = string(tradeErr.Status)
		}
	}

	rich := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		rich.WithMetadata(metadata)
	}
	return rich
}

func categoryForStatus(status int) goerrors.Category {
	switch {
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status >= 400 && status < 500:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryInternal
	}
}
