package httpx

import (
	"errors"

	"github.com/Abraxas-365/bolsa/pkg/errx"
	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler converts handler errors to standard HTTP responses
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Fiber errors (e.g., route not found, bad body)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
			"code":  fe.Code,
		})
	}

	var xe *errx.Error
	if errors.As(err, &xe) {
		if xe.Type == errx.TypeInternal {
			logx.Errorw("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"code", xe.Code,
				"error", err,
			)
		}
		return c.Status(xe.HTTPStatus).JSON(xe.ToHTTPResponse())
	}

	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    errx.TypeInternal,
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
