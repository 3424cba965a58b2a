package middleware

import (
	"net/http/httptest"
	"testing"

	"backend-qms/internal/config"

	"github.com/gofiber/fiber/v2"
)

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/secure", JWTAuth(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/secure", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", resp.StatusCode)
	}
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := config.GenerateToken(7, "alex", "STAFF")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	app := fiber.New()
	app.Get("/secure", JWTAuth(), func(c *fiber.Ctx) error {
		if c.Locals("user_id").(int64) != 7 {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
}

// A non-ADMIN session must be rejected by the role gate before the
// handler — and therefore before any store mutation — runs.
func TestRoleAuthBlocksBeforeHandler(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := config.GenerateToken(7, "alex", "STAFF")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	handlerRan := false
	app := fiber.New()
	app.Post("/admin", JWTAuth(), RoleAuth("ADMIN"), func(c *fiber.Ctx) error {
		handlerRan = true
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status=%d, want 403", resp.StatusCode)
	}
	if handlerRan {
		t.Fatal("handler must not run for a non-admin session")
	}
}

func TestRoleAuthAllowsAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := config.GenerateToken(1, "admin", "ADMIN")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	app := fiber.New()
	app.Post("/admin", JWTAuth(), RoleAuth("ADMIN"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
}
