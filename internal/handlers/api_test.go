package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/config"
	"github.com/oticalume/otica-crm/internal/handlers"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/middleware"
	"github.com/oticalume/otica-crm/internal/routes"
	"github.com/oticalume/otica-crm/internal/services"
	"github.com/oticalume/otica-crm/internal/sheets"
	"github.com/oticalume/otica-crm/internal/storage"
)

func newTestApp(t *testing.T) (*fiber.App, *storage.Factory) {
	t.Helper()
	cfg := &config.Config{
		StorageDriver: "memory",
		StoragePath:   "api-" + uuid.NewString() + ".db",
		CORSOrigins:   "*",
	}
	roster := identity.DefaultRegistry()
	stores := storage.NewFactory(cfg)

	clientService := services.NewClientService(stores, roster)
	contactService := services.NewContactService(stores, roster)
	eventService := services.NewEventService(stores, roster)
	exporter := sheets.NewExporter(cfg)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Use(middleware.Identity(roster, cfg))
	routes.Setup(app,
		handlers.NewHealthHandler(stores, roster),
		handlers.NewUserHandler(roster),
		handlers.NewClientHandler(clientService),
		handlers.NewContactHandler(contactService),
		handlers.NewEventHandler(eventService),
		handlers.NewSheetsHandler(exporter, clientService),
	)
	return app, stores
}

func doJSON(t *testing.T, app *fiber.App, method, target, user string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHealthNeedsNoIdentity(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["storage"])
}

func TestIdentityResolution(t *testing.T) {
	app, _ := newTestApp(t)

	t.Run("missing identity is 400", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/clientes", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, apperr.CodeNotAuthenticated, body["code"])
	})

	t.Run("unknown identity is 403", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/clientes", "fulano-de-tal", nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, apperr.CodeNotAuthorized, body["code"])
	})

	t.Run("header alias spelling resolves", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/clientes", "Ana Cláudia", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("query key resolves", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/clientes?usuario_id=rafael", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("body key resolves", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/clientes", "", map[string]interface{}{
			"nome":        "Cliente Corpo",
			"responsavel": "simone",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestClientCPFConflictScenario(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/clientes", "ana-claudia",
		map[string]interface{}{"nome": "Ana", "cpf": "123.456.789-00"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/clientes", "ana-claudia",
		map[string]interface{}{"nome": "Ana2", "cpf": "12345678900"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperr.CodeConflict, body["code"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/clientes", "rafael",
		map[string]interface{}{"nome": "Ana2", "cpf": "12345678900"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestContactPatchFlow(t *testing.T) {
	app, stores := newTestApp(t)

	_, created := doJSON(t, app, http.MethodPost, "/api/clientes", "ana-claudia",
		map[string]interface{}{
			"nome": "Lia",
			"compras": []map[string]interface{}{{
				"data": "2024-01-10",
				"contatos": []map[string]interface{}{{
					"dataContato": "2099-06-10",
					"meses":       3,
				}},
			}},
		})
	purchases := created["compras"].([]interface{})
	contacts := purchases[0].(map[string]interface{})["contatos"].([]interface{})
	contactID := int(contacts[0].(map[string]interface{})["id"].(float64))
	target := fmt.Sprintf("/api/contatos/%d", contactID)

	t.Run("rejects extra fields", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPatch, target, "ana-claudia",
			map[string]interface{}{"completed": true, "nota": "x"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("owner toggles to completed", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPatch, target, "ana-claudia",
			map[string]interface{}{"completed": true})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "completed", body["status"])
	})

	t.Run("foreign-owned contact is 403", func(t *testing.T) {
		store, err := stores.ForUser("ana-claudia")
		require.NoError(t, err)
		require.NoError(t, store.DB.Table("clients").Where("id > ?", 0).
			Update("owner_id", "rafael").Error)

		resp, body := doJSON(t, app, http.MethodPatch, target, "ana-claudia",
			map[string]interface{}{"completed": false})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, apperr.CodeNotAuthorized, body["code"])
	})

	t.Run("missing contact is 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPatch, "/api/contatos/987654", "ana-claudia",
			map[string]interface{}{"completed": true})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestEventRangeValidationOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/api/eventos?from=2024-02-01&to=2024-01-01", "rafael", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperr.CodeValidation, body["code"])
}

func TestSheetsNotConfigured(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/integracoes/planilha", "rafael", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["configured"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/integracoes/planilha/exportar", "rafael", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, apperr.CodeNotConfigured, body["code"])
	details := body["details"].(map[string]interface{})
	missing := details["missing"].([]interface{})
	assert.Contains(t, missing, "SHEETS_CREDENTIALS_FILE")
	assert.Contains(t, missing, "SHEETS_SPREADSHEET_ID")
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/api/nada", "rafael", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperr.CodeNotFound, body["code"])
}

func TestLegacyImportNotImplemented(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodPost, "/api/clientes/importar", "rafael", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, apperr.CodeNotImplemented, body["code"])
}
