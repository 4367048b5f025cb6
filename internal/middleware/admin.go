package middleware

import (
	"github.com/akshalkotian/doctorappointment/internal/config"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired lets a request through when the token carries the admin
// role or its email is listed in ADMIN_EMAILS. It must run after
// JWTProtected.
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminEmails := cfg.AdminEmailList()

	return func(c *fiber.Ctx) error {
		p, err := CurrentPrincipal(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if p.Role == models.RoleAdmin || contains(adminEmails, p.Email) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
