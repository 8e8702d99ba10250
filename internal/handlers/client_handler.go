package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/dto"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/services"
)

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List handles GET /api/clientes?q=&page=: paginated, user-scoped substring
// search over name, email and phone.
func (h *ClientHandler) List(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	resp, err := h.clients.List(user, c.Query("q"), c.QueryInt("page", 1))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *ClientHandler) Get(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	client, err := h.clients.Get(user, id)
	if err != nil {
		return err
	}
	return c.JSON(client)
}

func (h *ClientHandler) Create(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	var payload dto.ClientPayload
	raw, err := parseBody(c, &payload)
	if err != nil {
		return err
	}
	client, err := h.clients.Create(user, payload, raw)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload dto.ClientPayload
	raw, err := parseBody(c, &payload)
	if err != nil {
		return err
	}
	client, err := h.clients.Update(user, id, payload, raw)
	if err != nil {
		return err
	}
	return c.JSON(client)
}

func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.clients.Delete(user, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "cliente removido"})
}

// Import is the legacy bulk import endpoint the old frontend still calls.
func (h *ClientHandler) Import(c *fiber.Ctx) error {
	return apperr.NotImplemented("importação de clientes não disponível")
}
