package handlers

import (
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SymptomHandler struct {
	symptoms *services.SymptomService
}

func NewSymptomHandler(symptoms *services.SymptomService) *SymptomHandler {
	return &SymptomHandler{symptoms: symptoms}
}

func (h *SymptomHandler) List(c *fiber.Ctx) error {
	return c.JSON(dto.SymptomListResponse{Symptoms: h.symptoms.Symptoms()})
}

func (h *SymptomHandler) Match(c *fiber.Ctx) error {
	var req dto.SymptomRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	return c.JSON(h.symptoms.Match(req.Symptom))
}
