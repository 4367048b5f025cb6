package handlers

import (
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the city, hospital and doctor listings.
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Cities(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"cities": h.catalog.Cities()})
}

func (h *CatalogHandler) Hospitals(c *fiber.Ctx) error {
	cityID := c.Params("id")
	city, ok := h.catalog.City(cityID)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "City not found")
	}
	return c.JSON(fiber.Map{
		"city":      city,
		"hospitals": h.catalog.HospitalsByCity(cityID),
	})
}

func (h *CatalogHandler) Doctors(c *fiber.Ctx) error {
	hospitalID := c.Params("id")
	hospital, ok := h.catalog.Hospital(hospitalID)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "Hospital not found")
	}
	return c.JSON(fiber.Map{
		"hospital": hospital,
		"doctors":  h.catalog.DoctorsByHospital(hospitalID),
	})
}

func (h *CatalogHandler) SearchDoctors(c *fiber.Ctx) error {
	query := c.Query("search")
	return c.JSON(fiber.Map{
		"doctors": h.catalog.SearchDoctors(query),
		"search":  query,
	})
}

func (h *CatalogHandler) Doctor(c *fiber.Ctx) error {
	detail, err := h.catalog.Doctor(c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(detail)
}
