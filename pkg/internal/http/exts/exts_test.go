package exts

import (
	"io"
	"net/http/httptest"
	"testing"

	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(t *testing.T, app *fiber.App, path string, header ...string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	for idx := 0; idx+1 < len(header); idx += 2 {
		req.Header.Set(header[idx], header[idx+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := make(map[string]any)
	require.NoError(t, jsoniter.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestGetPagination(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		page, limit, offset := GetPagination(c)
		return Paginated(c, []int{}, page, limit, int64(offset)+25)
	})

	cases := []struct {
		query  string
		page   float64
		limit  float64
		pages  float64
		offset int
	}{
		{"", 1, DefaultPageLimit, 3, 0},
		{"?page=3&limit=5", 3, 5, 7, 10},
		{"?page=0&limit=0", 1, DefaultPageLimit, 3, 0},
		{"?limit=1000", 1, MaxPageLimit, 1, 0},
	}

	for _, item := range cases {
		status, body := request(t, app, "/"+item.query)
		require.Equal(t, fiber.StatusOK, status, item.query)

		pagination := body["pagination"].(map[string]any)
		assert.Equal(t, item.page, pagination["page"], item.query)
		assert.Equal(t, item.limit, pagination["limit"], item.query)
		assert.Equal(t, float64(item.offset+25), pagination["total"], item.query)
		assert.Equal(t, item.pages, pagination["pages"], item.query)
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return services.ConflictError("slug %q is taken", "hello")
	})
	app.Get("/upstream", func(c *fiber.Ctx) error {
		return services.UpstreamError(io.ErrUnexpectedEOF, "catalog is down")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusForbidden, "nope")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return io.ErrClosedPipe
	})

	status, body := request(t, app, "/conflict")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])
	assert.Equal(t, `slug "hello" is taken`, body["error"])

	status, body = request(t, app, "/upstream")
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "UPSTREAM_ERROR", body["code"])

	status, body = request(t, app, "/fiber")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, body = request(t, app, "/plain")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.NotContains(t, body["error"], "pipe")

	status, body = request(t, app, "/missing")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestAuthGuards(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		switch c.Get("X-Role") {
		case models.UserRoleAdmin, models.UserRoleUser:
			c.Locals("user", models.User{BaseModel: models.BaseModel{ID: 1}, Role: c.Get("X-Role")})
		}
		return c.Next()
	})
	app.Use(ContextMiddleware(nil))
	app.Get("/admin", func(c *fiber.Ctx) error {
		if err := EnsureAdmin(c); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	status, _ := request(t, app, "/admin")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = request(t, app, "/admin", "X-Role", models.UserRoleUser)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := request(t, app, "/admin", "X-Role", models.UserRoleAdmin, fiber.HeaderAuthorization, "Bearer whatever")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ok"])
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": BearerToken(c)})
	})

	_, body := request(t, app, "/", fiber.HeaderAuthorization, "bearer abc.def")
	assert.Equal(t, "abc.def", body["token"])

	_, body = request(t, app, "/", fiber.HeaderAuthorization, "Basic Zm9vOmJhcg==")
	assert.Equal(t, "", body["token"])
}
