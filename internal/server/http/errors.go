package httpserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/seawolf-games/battleship-server/internal/errs"
)

// fail maps sentinel errors onto HTTP status codes in one place. Data-integrity
// faults (malformed rows, invalid ship layouts) and programmer errors fall
// through to 500 so they are never mistaken for an ordinary not-found.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, errs.ErrValidation):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrUnauthorized):
		status, msg = fiber.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errs.ErrNotFound):
		status, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, errs.ErrAlreadyExists):
		status, msg = fiber.StatusConflict, "already exists"
	case errors.Is(err, errs.ErrRateLimited):
		status, msg = fiber.StatusTooManyRequests, "too many attempts"
	case errors.Is(err, errs.ErrStorageUnavailable):
		status, msg = fiber.StatusServiceUnavailable, "storage unavailable"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
