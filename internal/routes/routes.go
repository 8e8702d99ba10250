package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/oticalume/otica-crm/internal/handlers"
)

func Setup(
	app *fiber.App,
	healthHandler *handlers.HealthHandler,
	userHandler *handlers.UserHandler,
	clientHandler *handlers.ClientHandler,
	contactHandler *handlers.ContactHandler,
	eventHandler *handlers.EventHandler,
	sheetsHandler *handlers.SheetsHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no identity required)
	api.Get("/health", healthHandler.Check)

	// Roster
	api.Get("/usuarios", userHandler.List)

	// Clients (purchases are embedded sub-resources)
	api.Get("/clientes", clientHandler.List)
	api.Post("/clientes", clientHandler.Create)
	api.Post("/clientes/importar", clientHandler.Import)
	api.Get("/clientes/:id", clientHandler.Get)
	api.Put("/clientes/:id", clientHandler.Update)
	api.Delete("/clientes/:id", clientHandler.Delete)

	// Post-sale follow-ups
	api.Patch("/contatos/:id", contactHandler.SetCompleted)

	// Calendar
	api.Get("/eventos", eventHandler.List)
	api.Post("/eventos", eventHandler.Create)
	api.Put("/eventos/:id", eventHandler.Update)
	api.Delete("/eventos/:id", eventHandler.Delete)

	// Spreadsheet integration (optional)
	api.Get("/integracoes/planilha", sheetsHandler.Status)
	api.Post("/integracoes/planilha/exportar", sheetsHandler.Export)
}
