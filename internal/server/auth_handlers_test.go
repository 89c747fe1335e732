package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const testUserPassword = "Sup3r$ecretPass!"

func createLoginUser(t *testing.T, s *Server, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testUserPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func jsonRequest(method, url string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := fiber.New()
	app.Post("/auth/register", s.Register)

	t.Run("success returns token and user", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/register", map[string]string{
			"username": "newuser",
			"email":    "newuser@example.com",
			"password": testUserPassword,
		}))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		var result struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		if result.Token == "" {
			t.Errorf("expected a token")
		}
		if result.User.Role != models.RoleUser {
			t.Errorf("expected role user, got %s", result.User.Role)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/register", map[string]string{
			"username": "someoneelse",
			"email":    "newuser@example.com",
			"password": testUserPassword,
		}))
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("expected 409, got %d", resp.StatusCode)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/register", map[string]string{
			"username": "weakling",
			"email":    "weak@example.com",
			"password": "short",
		}))
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := fiber.New()
	app.Post("/auth/login", s.Login)

	user := createLoginUser(t, s, "alice")

	t.Run("valid credentials", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
			"email":    user.Email,
			"password": testUserPassword,
		}))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var result struct {
			Token string `json:"token"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		if result.Token == "" {
			t.Errorf("expected a token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
			"email":    user.Email,
			"password": "wrong-password",
		}))
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("deactivated account", func(t *testing.T) {
		inactive := createLoginUser(t, s, "ghost")
		s.db.Model(inactive).Update("is_active", false)

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
			"email":    inactive.Email,
			"password": testUserPassword,
		}))
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestPasswordResetRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := fiber.New()
	app.Post("/auth/forgot-password", s.ForgotPassword)
	app.Post("/auth/reset-password", s.ResetPassword)
	app.Post("/auth/login", s.Login)

	user := createLoginUser(t, s, "bob")

	// Test env exposes the raw token in the response body.
	resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/forgot-password", map[string]string{
		"email": user.Email,
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forgot-password: expected 200, got %d", resp.StatusCode)
	}
	var forgot struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&forgot)
	if forgot.Token == "" {
		t.Fatalf("expected raw token in test env response")
	}

	const newPassword = "N3w$ecretPass!!x"
	resp, _ = app.Test(jsonRequest(http.MethodPost, "/auth/reset-password", map[string]string{
		"token":        forgot.Token,
		"new_password": newPassword,
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset-password: expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    user.Email,
		"password": newPassword,
	}))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("login with new password: expected 200, got %d", resp.StatusCode)
	}

	t.Run("unknown email still responds 200", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/forgot-password", map[string]string{
			"email": "nobody@example.com",
		}))
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		var body struct {
			Token string `json:"token"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if body.Token != "" {
			t.Errorf("no token should be issued for unknown email")
		}
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	app := fiber.New()

	user := createLoginUser(t, s, "carol")
	app.Put("/auth/change-password", func(c *fiber.Ctx) error {
		c.Locals("userID", user.ID)
		return s.ChangePassword(c)
	})

	t.Run("wrong current password", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPut, "/auth/change-password", map[string]string{
			"current_password": "nope",
			"new_password":     "N3w$ecretPass!!x",
		}))
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("success", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPut, "/auth/change-password", map[string]string{
			"current_password": testUserPassword,
			"new_password":     "N3w$ecretPass!!x",
		}))
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})
}
