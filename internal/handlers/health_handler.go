package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oticalume/otica-crm/internal/dto"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/storage"
)

type HealthHandler struct {
	stores *storage.Factory
	roster *identity.Registry
}

func NewHealthHandler(stores *storage.Factory, roster *identity.Registry) *HealthHandler {
	return &HealthHandler{stores: stores, roster: roster}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storageStatus := h.stores.Driver()
	if err := h.stores.Ping(); err != nil {
		storageStatus = h.stores.Driver() + " unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Storage:   storageStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserCount: len(h.roster.All()),
	})
}
