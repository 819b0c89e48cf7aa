package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/asfalya/internal/auth"
	"github.com/example/asfalya/internal/config"
	"github.com/example/asfalya/internal/handlers"
	"github.com/example/asfalya/internal/middleware"
	"github.com/example/asfalya/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	store := auth.NewGormStore(db)
	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	authService := auth.NewService(store, hasher, tokens)

	emailService := services.NewEmailService(cfg)
	smsService := services.NewSMSService(cfg)

	authHandler := handlers.NewAuthHandler(authService, emailService, smsService)
	customerHandler := handlers.NewCustomerHandler(db, authService)
	mechanicHandler := handlers.NewMechanicHandler(db)
	uploadHandler := handlers.NewUploadHandler(db, authService)
	analyticsHandler := handlers.NewAnalyticsHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db, emailService)

	api := app.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/request-otp", authHandler.RequestOTP)
	authGroup.Post("/activate", authHandler.Activate)

	// Authenticated routes
	authenticated := api.Group("", middleware.AuthMiddleware(authService))
	authenticated.Get("/users/me", authHandler.Me)
	authenticated.Put("/users/me/password", authHandler.ChangePassword)

	// Mechanics: reads are open to authenticated users, writes are admin only.
	authenticated.Get("/mechanics", mechanicHandler.ListMechanics)
	authenticated.Get("/mechanics/:id", mechanicHandler.GetMechanic)

	// Admin routes
	admin := authenticated.Group("", middleware.RequireAdmin())

	admin.Get("/customers", customerHandler.ListCustomers)
	admin.Post("/customers", customerHandler.CreateCustomer)
	admin.Get("/customers/:id", customerHandler.GetCustomer)
	admin.Put("/customers/:id", customerHandler.UpdateCustomer)
	admin.Delete("/customers/:id", customerHandler.DeleteCustomer)

	admin.Post("/mechanics", mechanicHandler.CreateMechanic)
	admin.Put("/mechanics/:id", mechanicHandler.UpdateMechanic)
	admin.Delete("/mechanics/:id", mechanicHandler.DeleteMechanic)

	admin.Post("/upload/customers", uploadHandler.UploadCustomers)
	admin.Post("/upload/mechanics", uploadHandler.UploadMechanics)

	admin.Get("/analytics/stats", analyticsHandler.Stats)
	admin.Get("/analytics/policy-distribution", analyticsHandler.PolicyDistribution)
	admin.Get("/analytics/expiry-timeline", analyticsHandler.ExpiryTimeline)
	admin.Get("/analytics/customer-growth", analyticsHandler.CustomerGrowth)

	admin.Post("/notifications/broadcast", notificationHandler.Broadcast)
}
