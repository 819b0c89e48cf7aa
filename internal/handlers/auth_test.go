package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/asfalya/internal/auth"
	"github.com/example/asfalya/internal/config"
	"github.com/example/asfalya/internal/models"
	"github.com/example/asfalya/internal/services"
)

func newAuthApp(t *testing.T) (*fiber.App, *auth.Service, *memoryStore) {
	t.Helper()

	store := newMemoryStore()
	svc := auth.NewService(store, auth.NewHasher(bcrypt.MinCost), auth.NewTokenIssuer("test-secret"))

	// No delivery backends configured: plaintext codes are dropped, which is
	// exactly what these tests need.
	cfg := &config.Config{}
	handler := NewAuthHandler(svc, services.NewEmailService(cfg), services.NewSMSService(cfg))

	app := fiber.New()
	app.Post("/register", handler.Register)
	app.Post("/login", handler.Login)
	app.Post("/request-otp", handler.RequestOTP)
	app.Post("/activate", handler.Activate)
	return app, svc, store
}

func postJSON(t *testing.T, app *fiber.App, path string, payload map[string]interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRegister_CreatesInactiveAccount(t *testing.T) {
	app, _, store := newAuthApp(t)

	resp := postJSON(t, app, "/register", map[string]interface{}{
		"email":     "alice@example.com",
		"full_name": "Alice",
		"password":  "pass-1234",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, store.saved, 1)
	require.False(t, store.saved[0].IsActive)
	// Registration schedules an activation code for delivery.
	require.NotNil(t, store.saved[0].OTPHash)
}

func TestRegister_DuplicateConflict(t *testing.T) {
	app, _, _ := newAuthApp(t)

	payload := map[string]interface{}{
		"phone":    "+15550001111",
		"password": "pass-1234",
	}

	resp := postJSON(t, app, "/register", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/register", payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_RequiresIdentifier(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/register", map[string]interface{}{
		"full_name": "Nobody",
		"password":  "pass-1234",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_FullActivationFlow(t *testing.T) {
	app, svc, _ := newAuthApp(t)

	resp := postJSON(t, app, "/register", map[string]interface{}{
		"email":    "bob@example.com",
		"password": "pass-1234",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Login before activation is refused.
	resp = postJSON(t, app, "/login", map[string]interface{}{
		"identifier": "bob@example.com",
		"password":   "pass-1234",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Grab a fresh code directly from the service; the HTTP surface never
	// returns plaintext codes.
	_, code, err := svc.RequestOTP("bob@example.com")
	require.NoError(t, err)

	resp = postJSON(t, app, "/activate", map[string]interface{}{
		"identifier": "bob@example.com",
		"code":       code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/login", map[string]interface{}{
		"identifier": "bob@example.com",
		"password":   "pass-1234",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	token, ok := body["access_token"].(string)
	require.True(t, ok)

	subject, err := svc.Tokens().Verify(token)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", subject)

	// Replaying the consumed code fails.
	resp = postJSON(t, app, "/activate", map[string]interface{}{
		"identifier": "bob@example.com",
		"code":       code,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_GenericRejection(t *testing.T) {
	app, svc, _ := newAuthApp(t)

	resp := postJSON(t, app, "/register", map[string]interface{}{
		"email":    "carol@example.com",
		"password": "pass-1234",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, code, err := svc.RequestOTP("carol@example.com")
	require.NoError(t, err)
	_, err = svc.RedeemOTP("carol@example.com", code)
	require.NoError(t, err)

	// Unknown identifier and wrong password produce identical responses.
	respUnknown := postJSON(t, app, "/login", map[string]interface{}{
		"identifier": "nonexistent@x.com",
		"password":   "anything",
	})
	respWrong := postJSON(t, app, "/login", map[string]interface{}{
		"identifier": "carol@example.com",
		"password":   "wrong-password",
	})

	require.Equal(t, http.StatusUnauthorized, respUnknown.StatusCode)
	require.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)

	bodyUnknown, err := io.ReadAll(respUnknown.Body)
	require.NoError(t, err)
	bodyWrong, err := io.ReadAll(respWrong.Body)
	require.NoError(t, err)
	require.Equal(t, string(bodyUnknown), string(bodyWrong))
}

func TestRequestOTP_DoesNotRevealAccounts(t *testing.T) {
	app, _, _ := newAuthApp(t)

	resp := postJSON(t, app, "/request-otp", map[string]interface{}{
		"identifier": "ghost@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, decodeBody(t, resp)["success"])
}

func TestActivate_ImportedAccountNeedsPassword(t *testing.T) {
	app, svc, store := newAuthApp(t)

	email := "imported@example.com"
	user := &models.User{Email: &email, FullName: "Imported"}
	require.NoError(t, svc.Import(user))
	require.Len(t, store.saved, 1)

	_, code, err := svc.RequestOTP(email)
	require.NoError(t, err)

	// Without a new password the request is rejected and the code survives.
	resp := postJSON(t, app, "/activate", map[string]interface{}{
		"identifier": email,
		"code":       code,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/activate", map[string]interface{}{
		"identifier": email,
		"code":       code,
		"password":   "chosen-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/login", map[string]interface{}{
		"identifier": email,
		"password":   "chosen-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
