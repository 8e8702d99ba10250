package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/dto"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/services"
)

type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// SetCompleted handles PATCH /api/contatos/:id. The body accepts
// {completed: boolean} and nothing else.
func (h *ContactHandler) SetCompleted(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var patch dto.ContactPatch
	raw, err := parseBody(c, &patch)
	if err != nil {
		return err
	}
	if !patch.Completed.Set || !patch.Completed.Valid {
		return apperr.Validation("completed é obrigatório e deve ser booleano")
	}
	for key := range raw {
		if key != "completed" {
			return apperr.Validation("campo não aceito: " + key)
		}
	}

	contact, err := h.contacts.SetCompleted(user, id, patch.Completed.Value)
	if err != nil {
		return err
	}
	return c.JSON(contact)
}
