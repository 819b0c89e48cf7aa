package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/asfalya/internal/models"
	"github.com/example/asfalya/internal/services"
)

// NotificationHandler sends admin broadcasts to customers.
type NotificationHandler struct {
	db    *gorm.DB
	email *services.EmailService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(db *gorm.DB, email *services.EmailService) *NotificationHandler {
	return &NotificationHandler{db: db, email: email}
}

type broadcastRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Broadcast emails every customer with an email address. Delivery is
// best-effort per recipient; one bounced address does not abort the rest.
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Subject == "" || req.Body == "" {
		return fiber.NewError(fiber.StatusBadRequest, "subject and body are required")
	}

	var customers []models.User
	if err := h.db.Where("is_admin = ? AND email IS NOT NULL", false).
		Find(&customers).Error; err != nil {
		return err
	}

	sent, failed := 0, 0
	for _, customer := range customers {
		if customer.Email == nil || *customer.Email == "" {
			continue
		}
		if err := h.email.SendBroadcast(*customer.Email, req.Subject, req.Body); err != nil {
			log.Printf("broadcast to user %s failed: %v", customer.ID, err)
			failed++
			continue
		}
		sent++
	}

	return c.JSON(fiber.Map{
		"success": true,
		"sent":    sent,
		"failed":  failed,
	})
}
