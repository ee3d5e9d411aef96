package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var ErrUnauthorized = errors.New("unauthorized")

// ErrorHandlerMiddleware turns errors returned by handlers into the standard
// JSON envelope. It only runs before a response body has been streamed.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := classify(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	var validationErr *ValidationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized, "Unauthorized"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
