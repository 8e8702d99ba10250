// Package sheets exports a user's client book to a Google Spreadsheet. The
// integration is optional: without credentials every call reports
// NOT_CONFIGURED with the list of missing prerequisites.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/config"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/models"
)

type Exporter struct {
	cfg *config.Config
}

func NewExporter(cfg *config.Config) *Exporter {
	return &Exporter{cfg: cfg}
}

// Missing lists the unset prerequisites. Empty means configured.
func (e *Exporter) Missing() []string {
	var missing []string
	if e.cfg.SheetsCredentialsFile == "" {
		missing = append(missing, "SHEETS_CREDENTIALS_FILE")
	}
	if e.cfg.SheetsSpreadsheetID == "" {
		missing = append(missing, "SHEETS_SPREADSHEET_ID")
	}
	return missing
}

func (e *Exporter) Configured() bool {
	return len(e.Missing()) == 0
}

// notConfigured builds the 503 carrying which prerequisites are absent.
func (e *Exporter) notConfigured() error {
	return apperr.NotConfigured(
		"integração com planilha não configurada",
		map[string]interface{}{"missing": e.Missing()},
	)
}

type ExportResult struct {
	RunID        string
	UpdatedRange string
	RowCount     int
}

// ExportClients writes one row per client to the sheet tab named after the
// user. The outbound call is bounded by the configured timeout and never
// retried.
func (e *Exporter) ExportClients(ctx context.Context, user *identity.User, clients []models.Client) (*ExportResult, error) {
	if !e.Configured() {
		return nil, e.notConfigured()
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, e.cfg.SheetsTimeout)
	defer cancel()

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(e.cfg.SheetsCredentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, apperr.NotConfigured(
			"credenciais da planilha inválidas",
			map[string]interface{}{"missing": []string{"SHEETS_CREDENTIALS_FILE"}},
		)
	}

	rows := [][]interface{}{
		{"id", "nome", "telefone", "email", "cpf", "ultimaCompra", "responsavel"},
	}
	for _, c := range clients {
		rows = append(rows, []interface{}{
			c.ID, c.Name, deref(c.Phone), deref(c.Email), deref(c.CPF), lastPurchase(c), c.OwnerID,
		})
	}

	writeRange := fmt.Sprintf("%s!A1", user.ID)
	resp, err := svc.Spreadsheets.Values.Update(
		e.cfg.SheetsSpreadsheetID,
		writeRange,
		&sheetsapi.ValueRange{Values: rows},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return nil, apperr.NotFound("planilha não encontrada")
		}
		return nil, apperr.Internal(fmt.Errorf("sheets update failed: %w", err))
	}

	slog.Info("clients exported to spreadsheet",
		"run_id", runID, "user", user.ID, "rows", len(rows)-1, "range", resp.UpdatedRange)
	return &ExportResult{
		RunID:        runID,
		UpdatedRange: resp.UpdatedRange,
		RowCount:     len(rows) - 1,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func lastPurchase(c models.Client) string {
	last := ""
	for _, p := range c.Purchases {
		if p.Date > last {
			last = p.Date
		}
	}
	return last
}
