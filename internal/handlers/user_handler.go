package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oticalume/otica-crm/internal/identity"
)

type UserHandler struct {
	roster *identity.Registry
}

func NewUserHandler(roster *identity.Registry) *UserHandler {
	return &UserHandler{roster: roster}
}

// List returns the fixed roster for the frontend's user picker.
func (h *UserHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"usuarios": h.roster.All()})
}
