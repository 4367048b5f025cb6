package handlers

import (
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) Availability(c *fiber.Ctx) error {
	resp, err := h.bookings.Availability(c.UserContext(), c.Params("id"), "")
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *BookingHandler) Book(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.BookRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	res, err := h.bookings.Book(c.UserContext(), p, c.Params("id"), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return bookingResult(c, res, fiber.StatusCreated)
}

func (h *BookingHandler) List(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	resp, err := h.bookings.MyAppointments(c.UserContext(), p)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	view, err := h.bookings.View(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(view)
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.bookings.Cancel(c.UserContext(), p, c.Params("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Appointment cancelled successfully"})
}

func (h *BookingHandler) RescheduleForm(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	resp, err := h.bookings.RescheduleForm(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *BookingHandler) Reschedule(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.RescheduleRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	res, err := h.bookings.Reschedule(c.UserContext(), p, c.Params("id"), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return bookingResult(c, res, fiber.StatusOK)
}
