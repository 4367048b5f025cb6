package handlers

import (
	"errors"
	"log/slog"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/middleware"
	"github.com/akshalkotian/doctorappointment/internal/receipt"
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// parseBody decodes the request body into req and validates it. On failure
// the 400 response has already been written and the returned error is the
// one to hand back to Fiber.
func parseBody(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dto.Validate(req); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	return true, nil
}

func principal(c *fiber.Ctx) (dto.Principal, bool) {
	p, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return dto.Principal{}, false
	}
	return p, true
}

func unauthorized(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
}

// serviceError maps a service error to its HTTP status. Anything unknown is
// logged and reported as a 500 without its detail.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAppointmentNotFound),
		errors.Is(err, services.ErrDoctorNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		return errorJSON(c, fiber.StatusConflict, booking.ConflictMessage)
	case errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, services.ErrPaymentInProgress),
		errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidSlot),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrSlotInPast),
		errors.Is(err, services.ErrOutsideWindow),
		errors.Is(err, services.ErrAppointmentPast),
		errors.Is(err, services.ErrAppointmentInactive),
		errors.Is(err, services.ErrNotRefundable),
		errors.Is(err, receipt.ErrNotPaid):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	slog.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

// bookingResult answers a reservation attempt: okStatus when the slot was reserved,
// 409 when another booking already holds it.
func bookingResult(c *fiber.Ctx, res booking.Result, okStatus int) error {
	if !res.OK {
		return c.Status(fiber.StatusConflict).JSON(res)
	}
	return c.Status(okStatus).JSON(res)
}
