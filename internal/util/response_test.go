package util

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/jobmarket/internal/apperr"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, StatusFor(apperr.KindValidation))
	assert.Equal(t, 404, StatusFor(apperr.KindNotFound))
	assert.Equal(t, 409, StatusFor(apperr.KindConflict))
	assert.Equal(t, 422, StatusFor(apperr.KindStateViolation))
	assert.Equal(t, 403, StatusFor(apperr.KindAuthorization))
	assert.Equal(t, 500, StatusFor(apperr.KindInternal))
}

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return AppErrorResponse(c, err) })
	resp, e := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, e)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestAppErrorResponseCarriesStructure(t *testing.T) {
	status, body := render(t, apperr.IncompleteSteps("s-1", 2))

	assert.Equal(t, 422, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INCOMPLETE_STEPS", body["code"])
	assert.Equal(t, "STATE_VIOLATION", body["kind"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "s-1", details["session_id"])
	assert.EqualValues(t, 2, details["remaining"])
}

func TestAppErrorResponseWrappedConflict(t *testing.T) {
	status, body := render(t, errors.Wrap(apperr.ClaimConflict("s-2"), "claim"))
	assert.Equal(t, 409, status)
	assert.Equal(t, "CLAIM_CONFLICT", body["code"])
}

func TestAppErrorResponseUnknownError(t *testing.T) {
	status, body := render(t, errors.New("db down"))
	assert.Equal(t, 500, status)
	assert.Equal(t, "INTERNAL", body["code"])
}
