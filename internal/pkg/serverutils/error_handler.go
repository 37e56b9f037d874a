package serverutils

import (
	"errors"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error onto the HTTP status the API reports for it.
func StatusFor(err error) int {
	var limitErr *dto.LimitExceededError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &limitErr):
		return fiber.StatusTooManyRequests
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrDuplicateKey):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperror.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// WriteError renders err as a BaseResponse. Unexpected failures are logged
// and their detail is not sent to the client.
func WriteError(ctx *fiber.Ctx, err error, log logger.ILogger) error {
	code := StatusFor(err)

	var limitErr *dto.LimitExceededError
	if errors.As(err, &limitErr) {
		res := &BaseResponse[dto.LimitExceededData]{
			Success: false,
			Code:    code,
			Message: limitErr.Error(),
			Error:   limitErr.Error(),
			Data:    dto.NewLimitExceededData(limitErr),
		}
		return ctx.Status(code).JSON(res)
	}

	message := apperror.Message(err)
	if code >= fiber.StatusInternalServerError {
		if log != nil {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}
		if code == fiber.StatusInternalServerError {
			message = "Internal server error"
		}
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

// ErrorHandler is installed as fiber.Config.ErrorHandler.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		return WriteError(ctx, err, log)
	}
}

// ErrorHandlerMiddleware converts errors returned further down the chain
// before other middleware (metrics, tracing) see the response.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return WriteError(ctx, err, log)
		}
		return nil
	}
}
