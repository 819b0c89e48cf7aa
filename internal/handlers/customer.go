package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/asfalya/internal/auth"
	"github.com/example/asfalya/internal/models"
	"github.com/example/asfalya/internal/utils"
)

// CustomerHandler manages the admin-facing customer CRUD.
type CustomerHandler struct {
	db  *gorm.DB
	svc *auth.Service
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(db *gorm.DB, svc *auth.Service) *CustomerHandler {
	return &CustomerHandler{db: db, svc: svc}
}

// ListCustomers returns non-admin accounts with pagination and search.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{}).Where("is_admin = ?", false)

	if search := c.Query("search"); search != "" {
		query = query.Where(
			"full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR policy_number ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%",
		)
	}

	if policyType := c.Query("policy_type"); policyType != "" {
		query = query.Where("policy_type = ?", policyType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var customers []models.User
	if err := query.Order("created_at desc").
		Offset(pg.Offset).Limit(pg.Limit).
		Find(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
		"total":   total,
		"page":    pg.Page,
		"limit":   pg.Limit,
	})
}

type customerRequest struct {
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	FullName     string  `json:"full_name"`
	Password     string  `json:"password"`
	Premium      float64 `json:"premium"`
	PolicyType   *string `json:"policy_type"`
	PolicyNumber *string `json:"policy_number"`
	PolicyExpiry *string `json:"policy_expiry"`
	VehiclePlate *string `json:"vehicle_plate"`
}

// CreateCustomer creates a customer account administratively. Without a
// password the account goes through the same activation path as an import.
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := stringVal(req.Email)
	phone := stringVal(req.Phone)

	var user *models.User
	var err error
	if req.Password != "" {
		user, err = h.svc.Register(email, phone, req.FullName, req.Password)
	} else {
		user = &models.User{
			Email:    optionalString(email),
			Phone:    optionalString(phone),
			FullName: req.FullName,
		}
		err = h.svc.Import(user)
	}
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateIdentifier):
			return fiber.NewError(fiber.StatusConflict, "email or phone already registered")
		case errors.Is(err, models.ErrNoIdentifier):
			return fiber.NewError(fiber.StatusBadRequest, "email or phone is required")
		}
		return err
	}

	if err := h.applyPolicyFields(user, &req); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// GetCustomer returns a single customer by ID.
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	var user models.User
	if err := h.db.Where("id = ?", c.Params("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// UpdateCustomer updates contact and policy attributes.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	var user models.User
	if err := h.db.Where("id = ?", c.Params("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email != nil {
		user.Email = optionalString(*req.Email)
	}
	if req.Phone != nil {
		user.Phone = optionalString(*req.Phone)
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}

	if err := h.applyPolicyFields(&user, &req); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// DeleteCustomer removes an account. This is the only hard-delete path.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	res := h.db.Where("id = ? AND is_admin = ?", c.Params("id"), false).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "customer not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"deleted": true,
	})
}

func (h *CustomerHandler) applyPolicyFields(user *models.User, req *customerRequest) error {
	user.Premium = req.Premium
	if req.PolicyType != nil {
		user.PolicyType = optionalString(*req.PolicyType)
	}
	if req.PolicyNumber != nil {
		user.PolicyNumber = optionalString(*req.PolicyNumber)
	}
	if req.VehiclePlate != nil {
		user.VehiclePlate = optionalString(*req.VehiclePlate)
	}
	if req.PolicyExpiry != nil && *req.PolicyExpiry != "" {
		expiry, err := time.Parse("2006-01-02", *req.PolicyExpiry)
		if err != nil {
			expiry, err = time.Parse(time.RFC3339, *req.PolicyExpiry)
		}
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid policy_expiry date")
		}
		user.PolicyExpiry = &expiry
	}

	if err := h.db.Save(user).Error; err != nil {
		if errors.Is(err, models.ErrNoIdentifier) {
			return fiber.NewError(fiber.StatusBadRequest, "email or phone is required")
		}
		return err
	}
	return nil
}

func stringVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
