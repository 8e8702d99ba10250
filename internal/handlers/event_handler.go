package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oticalume/otica-crm/internal/dto"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/services"
)

type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List handles GET /api/eventos?from=&to=: stored events merged with
// synthetic contact-derived entries inside the inclusive range.
func (h *EventHandler) List(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	events, err := h.events.List(user, c.Query("from"), c.Query("to"))
	if err != nil {
		return err
	}
	return c.JSON(events)
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	var payload dto.EventPayload
	raw, err := parseBody(c, &payload)
	if err != nil {
		return err
	}
	event, err := h.events.Create(user, payload, raw)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload dto.EventPayload
	raw, err := parseBody(c, &payload)
	if err != nil {
		return err
	}
	event, err := h.events.Update(user, id, payload, raw)
	if err != nil {
		return err
	}
	return c.JSON(event)
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.events.Delete(user, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "evento removido"})
}
