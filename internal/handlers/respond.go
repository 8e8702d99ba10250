package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/oticalume/otica-crm/internal/apperr"
)

// parseID parses a numeric path id; anything else is a validation failure.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("id inválido: " + raw)
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into dst and also returns the raw map, which
// owner resolution scans for aliased fields.
func parseBody(c *fiber.Ctx, dst interface{}) (map[string]interface{}, error) {
	body := c.Body()
	if len(body) == 0 {
		return nil, apperr.Validation("corpo da requisição ausente")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, apperr.Validation("corpo da requisição inválido: " + err.Error())
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.Validation("corpo da requisição inválido: " + err.Error())
	}
	return raw, nil
}
