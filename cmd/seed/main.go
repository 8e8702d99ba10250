// Seed inserts a small demo dataset into one user's store. One-shot; safe to
// run repeatedly (it always appends fresh records).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oticalume/otica-crm/internal/config"
	"github.com/oticalume/otica-crm/internal/dto"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/logging"
	"github.com/oticalume/otica-crm/internal/services"
	"github.com/oticalume/otica-crm/internal/storage"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	userFlag := flag.String("user", identity.DefaultUserID, "roster user to seed")
	flag.Parse()

	cfg := config.Load()
	roster := identity.DefaultRegistry()
	if cfg.UsersConfigPath != "" {
		loaded, err := identity.LoadFromFile(cfg.UsersConfigPath)
		if err != nil {
			slog.Error("failed to load user roster", "error", err)
			os.Exit(1)
		}
		roster = loaded
	}

	user := roster.Resolve(*userFlag)
	if user == nil {
		slog.Error("user not in roster", "user", *userFlag)
		os.Exit(1)
	}

	stores := storage.NewFactory(cfg)
	clients := services.NewClientService(stores, roster)
	events := services.NewEventService(stores, roster)

	today := time.Now()
	purchaseDate := today.AddDate(0, -3, 0).Format("2006-01-02")
	followUp := today.AddDate(0, 0, 14).Format("2006-01-02")
	overdue := today.AddDate(0, 0, -7).Format("2006-01-02")

	seedClients := []dto.ClientPayload{
		{
			Name:      dto.Some("Mariana Prado"),
			Phone:     dto.Some("(11) 98877-1020"),
			Email:     dto.Some("mariana.prado@example.com"),
			CPF:       dto.Some(fmt.Sprintf("%011d", time.Now().UnixNano()%100000000000)),
			Interests: dto.Some([]string{"lentes multifocais", "armações acetato"}),
			Purchases: dto.Some([]dto.PurchasePayload{{
				Date:       dto.Some(purchaseDate),
				Frame:      dto.Some("Ray-Ban RB5154"),
				Lens:       dto.Some("Multifocal antirreflexo"),
				FrameValue: dto.Some(690.0),
				LensValue:  dto.Some(1250.0),
				Total:      dto.Some(1940.0),
				Contacts: dto.Some([]dto.ContactPayload{
					{ContactDate: dto.Some(followUp), PurchaseDate: dto.Some(purchaseDate), MonthOffset: dto.Some(3)},
					{ContactDate: dto.Some(overdue), PurchaseDate: dto.Some(purchaseDate), MonthOffset: dto.Some(1)},
				}),
			}}),
		},
		{
			Name:  dto.Some("Jorge Albuquerque"),
			Phone: dto.Some("(11) 97654-3311"),
			Tag:   dto.Some("retorno"),
		},
	}

	created := 0
	for _, payload := range seedClients {
		if _, err := clients.Create(user, payload, map[string]interface{}{}); err != nil {
			slog.Error("seed client failed", "error", err)
			continue
		}
		created++
	}

	eventPayload := dto.EventPayload{
		Date:  dto.Some(today.AddDate(0, 0, 3).Format("2006-01-02")),
		Title: dto.Some("Campanha dia dos pais"),
		Color: dto.Some("#00897b"),
	}
	if _, err := events.Create(user, eventPayload, map[string]interface{}{}); err != nil {
		slog.Error("seed event failed", "error", err)
	}

	slog.Info("seed finished", "user", user.ID, "clients", created)
}
