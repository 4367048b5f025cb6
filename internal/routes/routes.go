package routes

import (
	"time"

	"github.com/akshalkotian/doctorappointment/internal/config"
	"github.com/akshalkotian/doctorappointment/internal/handlers"
	"github.com/akshalkotian/doctorappointment/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	catalogHandler *handlers.CatalogHandler,
	bookingHandler *handlers.BookingHandler,
	paymentHandler *handlers.PaymentHandler,
	symptomHandler *handlers.SymptomHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/admin/register", authHandler.RegisterAdmin)
	auth.Post("/admin/login", authHandler.LoginAdmin)

	// Catalog browsing is public
	api.Get("/cities", catalogHandler.Cities)
	api.Get("/cities/:id/hospitals", catalogHandler.Hospitals)
	api.Get("/hospitals/:id/doctors", catalogHandler.Doctors)

	// JWT applied per route so the public routes above stay open
	jwt := middleware.JWTProtected(cfg)

	api.Get("/me", jwt, authHandler.Me)
	api.Put("/me", jwt, authHandler.UpdateMe)

	api.Get("/doctors", jwt, catalogHandler.SearchDoctors)
	api.Get("/doctors/:id", jwt, catalogHandler.Doctor)
	api.Get("/doctors/:id/availability", jwt, bookingHandler.Availability)
	api.Post("/doctors/:id/appointments", jwt, bookingHandler.Book)

	api.Get("/appointments", jwt, bookingHandler.List)
	api.Get("/appointments/:id", jwt, bookingHandler.Get)
	api.Post("/appointments/:id/cancel", jwt, bookingHandler.Cancel)
	api.Get("/appointments/:id/reschedule", jwt, bookingHandler.RescheduleForm)
	api.Post("/appointments/:id/reschedule", jwt, bookingHandler.Reschedule)
	api.Post("/appointments/:id/payment", jwt, paymentHandler.Pay)
	api.Get("/appointments/:id/receipt", jwt, paymentHandler.Receipt)

	api.Get("/symptoms", jwt, symptomHandler.List)
	api.Post("/symptoms", jwt, symptomHandler.Match)
	api.Post("/symptoms/match", jwt, symptomHandler.Match)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", jwt, middleware.AdminRequired(cfg))
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Get("/timetable", adminHandler.Timetable)
	admin.Post("/appointments/:id/cancel", adminHandler.Cancel)
	admin.Post("/appointments/:id/no-show", adminHandler.MarkNoShow)
	admin.Post("/appointments/:id/refund", adminHandler.Refund)
	admin.Post("/appointments/:id/mark-paid", adminHandler.MarkPaid)
}
