package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oticalume/otica-crm/internal/dto"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/services"
	"github.com/oticalume/otica-crm/internal/sheets"
)

type SheetsHandler struct {
	exporter *sheets.Exporter
	clients  *services.ClientService
}

func NewSheetsHandler(exporter *sheets.Exporter, clients *services.ClientService) *SheetsHandler {
	return &SheetsHandler{exporter: exporter, clients: clients}
}

// Status handles GET /api/integracoes/planilha.
func (h *SheetsHandler) Status(c *fiber.Ctx) error {
	missing := h.exporter.Missing()
	return c.JSON(fiber.Map{
		"configured": len(missing) == 0,
		"missing":    missing,
	})
}

// Export handles POST /api/integracoes/planilha/exportar. It writes the
// requester's client book to the configured spreadsheet.
func (h *SheetsHandler) Export(c *fiber.Ctx) error {
	user := identity.CurrentUser(c)
	clients, err := h.clients.ListAll(user)
	if err != nil {
		return err
	}
	result, err := h.exporter.ExportClients(c.Context(), user, clients)
	if err != nil {
		return err
	}
	return c.JSON(dto.ExportResponse{
		RunID:        result.RunID,
		Spreadsheet:  "clientes",
		UpdatedRange: result.UpdatedRange,
		RowCount:     result.RowCount,
	})
}
