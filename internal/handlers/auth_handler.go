package handlers

import (
	"errors"

	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		return authError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	var req dto.AdminRegisterRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.authService.RegisterAdmin(&req)
	if err != nil {
		return authError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return h.login(c, models.RolePatient)
}

func (h *AuthHandler) LoginAdmin(c *fiber.Ctx) error {
	return h.login(c, models.RoleAdmin)
}

func (h *AuthHandler) login(c *fiber.Ctx, as models.Role) error {
	var req dto.LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Login(&req, as)
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.authService.Profile(p.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	p, ok := principal(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, err := h.authService.UpdateProfile(p.UserID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

func authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUseAdminLogin),
		errors.Is(err, services.ErrAdminRequired),
		errors.Is(err, services.ErrInvalidAdminCode),
		errors.Is(err, services.ErrAdminSignupDisabled):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	}
	return serviceError(c, err)
}
