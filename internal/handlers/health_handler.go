package handlers

import (
	"time"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ledger booking.Ledger
	driver string
}

func NewHealthHandler(ledger booking.Ledger, driver string) *HealthHandler {
	return &HealthHandler{ledger: ledger, driver: driver}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ledgerStatus := "ok"
	if err := h.ledger.Ping(c.UserContext()); err != nil {
		ledgerStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Ledger:       ledgerStatus,
		LedgerDriver: h.driver,
	})
}
