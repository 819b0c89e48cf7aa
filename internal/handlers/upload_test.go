package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/asfalya/internal/auth"
)

func TestHeaderIndex(t *testing.T) {
	t.Parallel()

	rows := [][]string{{" Name ", "ADDRESS", "latitude"}, {"x", "y", "z"}}

	header, err := headerIndex(rows, "name", "address")
	require.NoError(t, err)
	require.Equal(t, 0, header["name"])
	require.Equal(t, 1, header["address"])

	_, err = headerIndex(rows, "name", "longitude")
	require.Error(t, err)
}

func TestColAndCell(t *testing.T) {
	t.Parallel()

	header := map[string]int{"email": 0, "phone": 2}
	require.Equal(t, 0, col(header, "email"))
	require.Equal(t, -1, col(header, "full_name"))

	row := []string{" a@example.com ", "", "+1555"}
	require.Equal(t, "a@example.com", cell(row, col(header, "email")))
	require.Equal(t, "+1555", cell(row, col(header, "phone")))
	require.Equal(t, "", cell(row, col(header, "full_name")))
	require.Equal(t, "", cell(row, 99))
}

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, workbook.SetCellValue(sheet, cellName, value))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))
	return &buf
}

func multipartUpload(t *testing.T, path, filename string, content *bytes.Buffer) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newUploadApp(t *testing.T) (*fiber.App, *memoryStore) {
	t.Helper()

	store := newMemoryStore()
	svc := auth.NewService(store, auth.NewHasher(bcrypt.MinCost), auth.NewTokenIssuer("test-secret"))
	handler := NewUploadHandler(nil, svc)

	app := fiber.New()
	app.Post("/upload/customers", handler.UploadCustomers)
	return app, store
}

func TestUploadCustomers_ImportsRows(t *testing.T) {
	app, store := newUploadApp(t)

	sheet := buildWorkbook(t, [][]string{
		{"email", "phone", "full_name", "policy_number"},
		{"a@example.com", "", "Alice", "POL-1"},
		{"", "+15550001111", "Bob", ""},
		{"", "", "Skipped", ""},
	})

	resp, err := app.Test(multipartUpload(t, "/upload/customers", "customers.xlsx", sheet))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, store.saved, 2)
	for _, user := range store.saved {
		require.False(t, user.IsActive)
		require.True(t, user.MustResetPassword)
		require.NotEmpty(t, user.PasswordHash)
	}
}

func TestUploadCustomers_DuplicatesSkipped(t *testing.T) {
	app, store := newUploadApp(t)
	store.failSaves["dup@example.com"] = fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)

	sheet := buildWorkbook(t, [][]string{
		{"email"},
		{"dup@example.com"},
		{"new@example.com"},
	})

	resp, err := app.Test(multipartUpload(t, "/upload/customers", "customers.xlsx", sheet))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, store.saved, 1)
}

func TestUploadCustomers_MissingIdentifierColumns(t *testing.T) {
	app, _ := newUploadApp(t)

	sheet := buildWorkbook(t, [][]string{
		{"full_name"},
		{"No Contact"},
	})

	resp, err := app.Test(multipartUpload(t, "/upload/customers", "customers.xlsx", sheet))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadCustomers_RejectsNonExcel(t *testing.T) {
	app, _ := newUploadApp(t)

	resp, err := app.Test(multipartUpload(t, "/upload/customers", "customers.csv", bytes.NewBufferString("email\na@b.c")))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
