package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
)

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid id", map[string]string{name: "must be a uuid"})
	}
	return id, nil
}

func uuidQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperr.Invalid("invalid filter", map[string]string{name: "must be a uuid"})
	}
	return &id, nil
}

func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Invalid("malformed request body", map[string]string{"body": err.Error()})
	}
	return nil
}
