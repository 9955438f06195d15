package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/jobmarket/internal/lifecycle"
)

func newApp(token string) *fiber.App {
	app := fiber.New()
	app.Use(Identity(token))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		a := ActorFrom(c)
		return c.JSON(fiber.Map{"id": a.ID, "role": a.Role, "status": a.Status})
	})
	return app
}

func TestIdentityStoresActor(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(HeaderActorID, id.String())
	req.Header.Set(HeaderActorRole, "employee")

	resp, err := newApp("").Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestIdentityRejectsMissingActor(t *testing.T) {
	resp, err := newApp("").Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(HeaderActorID, uuid.NewString())
	req.Header.Set(HeaderActorRole, "admin")
	resp, err = newApp("").Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestIdentityChecksToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(HeaderActorID, uuid.NewString())
	req.Header.Set(HeaderActorRole, string(lifecycle.RoleEmployer))
	req.Header.Set(HeaderIdentityToken, "wrong")

	resp, err := newApp("right").Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req.Header.Set(HeaderIdentityToken, "right")
	resp, err = newApp("right").Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestIdentityRefusesSystemRole(t *testing.T) {
	for _, raw := range []string{"SYSTEM", "system", " System "} {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set(HeaderActorID, uuid.NewString())
		req.Header.Set(HeaderActorRole, raw)

		resp, err := newApp("").Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode, raw)
	}
}
