package handlers

import (
	"context"

	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	var filter dto.DashboardFilter
	if err := c.QueryParser(&filter); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid filter")
	}

	resp, err := h.admin.Dashboard(c.UserContext(), filter)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) Timetable(c *fiber.Ctx) error {
	resp, err := h.admin.Timetable(c.UserContext(), c.Query("doctor"), c.Query("date"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) Cancel(c *fiber.Ctx) error {
	return h.act(c, h.admin.Cancel, "Appointment cancelled successfully")
}

func (h *AdminHandler) MarkNoShow(c *fiber.Ctx) error {
	return h.act(c, h.admin.MarkNoShow, "Appointment marked as no-show")
}

func (h *AdminHandler) Refund(c *fiber.Ctx) error {
	return h.act(c, h.admin.Refund, "Payment marked as refunded")
}

func (h *AdminHandler) MarkPaid(c *fiber.Ctx) error {
	return h.act(c, h.admin.MarkPaid, "Payment marked as received")
}

func (h *AdminHandler) act(c *fiber.Ctx, action func(context.Context, string) error, message string) error {
	if err := action(c.UserContext(), c.Params("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: message})
}
