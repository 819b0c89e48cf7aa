package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/example/asfalya/internal/auth"
	"github.com/example/asfalya/internal/models"
)

// UploadHandler manages bulk Excel imports.
type UploadHandler struct {
	db  *gorm.DB
	svc *auth.Service
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(db *gorm.DB, svc *auth.Service) *UploadHandler {
	return &UploadHandler{db: db, svc: svc}
}

// UploadMechanics imports workshops from an .xlsx sheet with name, address,
// latitude and longitude columns.
func (h *UploadHandler) UploadMechanics(c *fiber.Ctx) error {
	rows, err := readSheet(c)
	if err != nil {
		return err
	}

	header, err := headerIndex(rows, "name", "address", "latitude", "longitude")
	if err != nil {
		return err
	}

	imported := 0
	for _, row := range rows[1:] {
		name := cell(row, col(header, "name"))
		address := cell(row, col(header, "address"))
		latitude := cell(row, col(header, "latitude"))
		longitude := cell(row, col(header, "longitude"))
		if name == "" || address == "" {
			continue
		}

		mechanic := models.Mechanic{
			Name:      name,
			Address:   address,
			Latitude:  latitude,
			Longitude: longitude,
		}
		if phone := cell(row, col(header, "phone")); phone != "" {
			mechanic.Phone = &phone
		}

		if err := h.db.Create(&mechanic).Error; err != nil {
			return err
		}
		imported++
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Successfully imported %d mechanics", imported),
	})
}

// UploadCustomers imports customer accounts. Each row needs an email or a
// phone; imported accounts stay inactive until OTP activation and never
// receive a usable placeholder password.
func (h *UploadHandler) UploadCustomers(c *fiber.Ctx) error {
	rows, err := readSheet(c)
	if err != nil {
		return err
	}

	header, err := headerIndex(rows)
	if err != nil {
		return err
	}
	if _, hasEmail := header["email"]; !hasEmail {
		if _, hasPhone := header["phone"]; !hasPhone {
			return fiber.NewError(fiber.StatusBadRequest, "missing required columns: must have 'email' or 'phone'")
		}
	}

	imported, skipped := 0, 0
	for _, row := range rows[1:] {
		email := cell(row, col(header, "email"))
		phone := cell(row, col(header, "phone"))
		if email == "" && phone == "" {
			skipped++
			continue
		}

		user := &models.User{
			FullName: cell(row, col(header, "full_name")),
		}
		if email != "" {
			user.Email = &email
		}
		if phone != "" {
			user.Phone = &phone
		}
		if policyType := cell(row, col(header, "policy_type")); policyType != "" {
			user.PolicyType = &policyType
		}
		if policyNumber := cell(row, col(header, "policy_number")); policyNumber != "" {
			user.PolicyNumber = &policyNumber
		}
		if plate := cell(row, col(header, "vehicle_plate")); plate != "" {
			user.VehiclePlate = &plate
		}

		if err := h.svc.Import(user); err != nil {
			// Unique-index collisions mean the customer is already known.
			if isDuplicateError(err) {
				skipped++
				continue
			}
			return err
		}
		imported++
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Successfully imported %d customers", imported),
		"skipped": skipped,
	})
}

func readSheet(c *fiber.Ctx) ([][]string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid file format. Please upload an Excel file.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "could not parse Excel file")
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "workbook contains no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "sheet contains no data rows")
	}

	return rows, nil
}

// headerIndex maps lowercased header names to column positions and checks
// that all required columns are present.
func headerIndex(rows [][]string, required ...string) (map[string]int, error) {
	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := header[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	return header, nil
}

// col returns the position of a header column, or -1 when the sheet does
// not carry it.
func col(header map[string]int, name string) int {
	if idx, ok := header[name]; ok {
		return idx
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isDuplicateError(err error) bool {
	if errors.Is(err, auth.ErrDuplicateIdentifier) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}
