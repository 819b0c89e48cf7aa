package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/asfalya/internal/models"
)

// AnalyticsHandler serves the admin dashboard aggregations.
type AnalyticsHandler struct {
	db *gorm.DB
}

// NewAnalyticsHandler constructs an AnalyticsHandler.
func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{db: db}
}

// Stats returns the dashboard headline numbers.
func (h *AnalyticsHandler) Stats(c *fiber.Ctx) error {
	var totalCustomers int64
	if err := h.db.Model(&models.User{}).
		Where("is_admin = ?", false).
		Count(&totalCustomers).Error; err != nil {
		return err
	}

	now := time.Now()

	var activePolicies int64
	if err := h.db.Model(&models.User{}).
		Where("is_admin = ?", false).
		Where("policy_number IS NOT NULL AND (policy_expiry IS NULL OR policy_expiry > ?)", now).
		Count(&activePolicies).Error; err != nil {
		return err
	}

	var expiringSoon int64
	if err := h.db.Model(&models.User{}).
		Where("is_admin = ?", false).
		Where("policy_expiry BETWEEN ? AND ?", now, now.AddDate(0, 0, 30)).
		Count(&expiringSoon).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"total_customers": totalCustomers,
		"active_policies": activePolicies,
		"expiring_soon":   expiringSoon,
	})
}

type policySlice struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// PolicyDistribution returns customer counts grouped by policy type.
func (h *AnalyticsHandler) PolicyDistribution(c *fiber.Ctx) error {
	var slices []policySlice
	if err := h.db.Model(&models.User{}).
		Select("COALESCE(policy_type, 'none') as name, count(*) as count").
		Where("is_admin = ?", false).
		Group("COALESCE(policy_type, 'none')").
		Order("count desc").
		Scan(&slices).Error; err != nil {
		return err
	}

	return c.JSON(slices)
}

type monthBucket struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// ExpiryTimeline returns how many policies expire in each of the next six
// months.
func (h *AnalyticsHandler) ExpiryTimeline(c *fiber.Ctx) error {
	start := time.Now()
	end := start.AddDate(0, 6, 0)

	var buckets []monthBucket
	if err := h.db.Model(&models.User{}).
		Select("to_char(policy_expiry, 'YYYY-MM') as month, count(*) as count").
		Where("is_admin = ? AND policy_expiry BETWEEN ? AND ?", false, start, end).
		Group("to_char(policy_expiry, 'YYYY-MM')").
		Order("month asc").
		Scan(&buckets).Error; err != nil {
		return err
	}

	return c.JSON(buckets)
}

// CustomerGrowth returns registrations per month over the last six months.
func (h *AnalyticsHandler) CustomerGrowth(c *fiber.Ctx) error {
	start := time.Now().AddDate(0, -6, 0)

	var buckets []monthBucket
	if err := h.db.Model(&models.User{}).
		Select("to_char(created_at, 'YYYY-MM') as month, count(*) as count").
		Where("is_admin = ? AND created_at >= ?", false, start).
		Group("to_char(created_at, 'YYYY-MM')").
		Order("month asc").
		Scan(&buckets).Error; err != nil {
		return err
	}

	return c.JSON(buckets)
}
