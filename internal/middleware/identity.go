package middleware

import (
	"errors"

	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrNoPrincipal = errors.New("no authenticated user in context")

// CurrentPrincipal reads the caller from the JWT claims JWTProtected left in
// context.
func CurrentPrincipal(c *fiber.Ctx) (dto.Principal, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return dto.Principal{}, ErrNoPrincipal
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return dto.Principal{}, errors.New("invalid claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return dto.Principal{}, errors.New("missing sub claim")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	return dto.Principal{
		UserID: sub,
		Email:  email,
		Name:   name,
		Role:   models.Role(role),
	}, nil
}
