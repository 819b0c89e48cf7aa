package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/asfalya/internal/auth"
	"github.com/example/asfalya/internal/middleware"
	"github.com/example/asfalya/internal/models"
	"github.com/example/asfalya/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	svc   *auth.Service
	email *services.EmailService
	sms   *services.SMSService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *auth.Service, email *services.EmailService, sms *services.SMSService) *AuthHandler {
	return &AuthHandler{svc: svc, email: email, sms: sms}
}

type registerRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Register creates a new inactive account and sends an activation code.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "password is required")
	}

	user, err := h.svc.Register(req.Email, req.Phone, req.FullName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateIdentifier):
			return fiber.NewError(fiber.StatusConflict, "email or phone already registered")
		case errors.Is(err, models.ErrNoIdentifier):
			return fiber.NewError(fiber.StatusBadRequest, "email or phone is required")
		}
		return err
	}

	h.deliverOTP(user)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
		"message": "account created, activation code sent",
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login authenticates by email or phone and returns a session token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, token, err := h.svc.Login(req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrNotActivated) {
			return fiber.NewError(fiber.StatusForbidden, "account requires activation")
		}
		// Resolver and verifier failures all look the same to the client.
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"user":         user,
		"access_token": token,
		"token_type":   "bearer",
	})
}

type requestOTPRequest struct {
	Identifier string `json:"identifier"`
}

// RequestOTP issues a fresh activation code and hands it to the delivery
// collaborator matching the account's identifier.
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req requestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, code, err := h.svc.RequestOTP(req.Identifier)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			// Same response as success so the endpoint cannot be used to
			// probe which identifiers exist.
			return c.JSON(fiber.Map{"success": true, "message": "activation code sent"})
		}
		return err
	}

	h.deliverCode(user, code)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "activation code sent",
	})
}

type activateRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
	Password   string `json:"password"`
}

// Activate redeems an activation code. Bulk-imported accounts must supply a
// new password in the same request; their import placeholder is unusable.
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	var req activateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Identifier == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "identifier and code are required")
	}

	mustReset := false
	if user, err := h.svc.Resolve(req.Identifier); err == nil {
		mustReset = user.MustResetPassword
	}
	if mustReset && req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "a new password is required to activate this account")
	}

	user, err := h.svc.RedeemOTP(req.Identifier, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrOtpExpired):
			return fiber.NewError(fiber.StatusBadRequest, "activation code expired")
		case errors.Is(err, auth.ErrOtpConsumed):
			return fiber.NewError(fiber.StatusBadRequest, "no active activation code")
		case errors.Is(err, auth.ErrOtpMismatch):
			return fiber.NewError(fiber.StatusBadRequest, "invalid activation code")
		case errors.Is(err, auth.ErrPrincipalNotFound):
			return fiber.NewError(fiber.StatusBadRequest, "invalid activation code")
		}
		return err
	}

	if req.Password != "" {
		if err := h.svc.SetPassword(user, req.Password); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"activated": true,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing authentication")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword updates the authenticated user's password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "missing authentication")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	identifier := ""
	if user.Email != nil {
		identifier = *user.Email
	} else if user.Phone != nil {
		identifier = *user.Phone
	}

	if _, err := h.svc.Authenticate(identifier, req.CurrentPassword); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := h.svc.SetPassword(user, req.NewPassword); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password updated successfully",
	})
}

// deliverOTP issues and delivers a first activation code for a new account.
func (h *AuthHandler) deliverOTP(user *models.User) {
	identifier := ""
	if user.Email != nil {
		identifier = *user.Email
	} else if user.Phone != nil {
		identifier = *user.Phone
	}

	_, code, err := h.svc.RequestOTP(identifier)
	if err != nil {
		log.Printf("failed to issue activation code for %s: %v", user.ID, err)
		return
	}

	h.deliverCode(user, code)
}

// deliverCode picks the delivery channel from the account's identifiers:
// email when present, SMS for phone-only accounts.
func (h *AuthHandler) deliverCode(user *models.User, code string) {
	switch {
	case user.Email != nil && *user.Email != "":
		if err := h.email.SendActivationCode(*user.Email, code); err != nil {
			log.Printf("activation email to user %s failed: %v", user.ID, err)
		}
	case user.Phone != nil && *user.Phone != "":
		if err := h.sms.SendActivationCode(*user.Phone, code); err != nil {
			log.Printf("activation SMS to user %s failed: %v", user.ID, err)
		}
	}
}
