package handlers

import (
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/receipt"
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	payments *services.PaymentService
	bookings *services.BookingService
}

func NewPaymentHandler(payments *services.PaymentService, bookings *services.BookingService) *PaymentHandler {
	return &PaymentHandler{payments: payments, bookings: bookings}
}

// Pay answers 200 with success=false when the gateway declines; the
// appointment is cancelled in that case.
func (h *PaymentHandler) Pay(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.PaymentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.payments.Process(c.UserContext(), p, c.Params("id"), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) Receipt(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	appt, err := h.bookings.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}

	pdf, err := receipt.Render(*appt)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+receipt.Filename(*appt)+`"`)
	return c.Send(pdf)
}
