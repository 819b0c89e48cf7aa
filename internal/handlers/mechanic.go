package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/asfalya/internal/models"
	"github.com/example/asfalya/internal/utils"
)

// MechanicHandler manages partner workshop CRUD.
type MechanicHandler struct {
	db *gorm.DB
}

// NewMechanicHandler constructs a MechanicHandler.
func NewMechanicHandler(db *gorm.DB) *MechanicHandler {
	return &MechanicHandler{db: db}
}

// ListMechanics returns mechanics with pagination and search.
func (h *MechanicHandler) ListMechanics(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Mechanic{})

	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ? OR address ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var mechanics []models.Mechanic
	if err := query.Order("name asc").
		Offset(pg.Offset).Limit(pg.Limit).
		Find(&mechanics).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    mechanics,
		"total":   total,
		"page":    pg.Page,
		"limit":   pg.Limit,
	})
}

type mechanicRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  string  `json:"latitude"`
	Longitude string  `json:"longitude"`
	Phone     *string `json:"phone"`
}

// CreateMechanic adds a workshop.
func (h *MechanicHandler) CreateMechanic(c *fiber.Ctx) error {
	var req mechanicRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Address == "" || req.Latitude == "" || req.Longitude == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, address, latitude and longitude are required")
	}

	mechanic := models.Mechanic{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Phone:     req.Phone,
	}

	if err := h.db.Create(&mechanic).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    mechanic,
	})
}

// GetMechanic returns a single workshop by ID.
func (h *MechanicHandler) GetMechanic(c *fiber.Ctx) error {
	var mechanic models.Mechanic
	if err := h.db.Where("id = ?", c.Params("id")).First(&mechanic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "mechanic not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    mechanic,
	})
}

// UpdateMechanic updates a workshop.
func (h *MechanicHandler) UpdateMechanic(c *fiber.Ctx) error {
	var mechanic models.Mechanic
	if err := h.db.Where("id = ?", c.Params("id")).First(&mechanic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "mechanic not found")
		}
		return err
	}

	var req mechanicRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != "" {
		mechanic.Name = req.Name
	}
	if req.Address != "" {
		mechanic.Address = req.Address
	}
	if req.Latitude != "" {
		mechanic.Latitude = req.Latitude
	}
	if req.Longitude != "" {
		mechanic.Longitude = req.Longitude
	}
	if req.Phone != nil {
		mechanic.Phone = req.Phone
	}

	if err := h.db.Save(&mechanic).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    mechanic,
	})
}

// DeleteMechanic removes a workshop.
func (h *MechanicHandler) DeleteMechanic(c *fiber.Ctx) error {
	res := h.db.Where("id = ?", c.Params("id")).Delete(&models.Mechanic{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "mechanic not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"deleted": true,
	})
}
