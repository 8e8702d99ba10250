package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/decorate"
	"github.com/oticalume/otica-crm/internal/dto"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/models"
	"github.com/oticalume/otica-crm/internal/storage"
)

type EventService struct {
	stores *storage.Factory
	roster *identity.Registry
}

func NewEventService(stores *storage.Factory, roster *identity.Registry) *EventService {
	return &EventService{stores: stores, roster: roster}
}

// List merges stored events with synthetic contact-derived entries inside an
// inclusive date range. Ownership is re-derived for every record and every
// related client; stale or foreign owner fields must never leak another
// user's calendar.
func (s *EventService) List(user *identity.User, from, to string) ([]map[string]interface{}, error) {
	if from != "" || to != "" {
		if !validDate(from) || !validDate(to) {
			return nil, apperr.Validation("período inválido, use from=AAAA-MM-DD&to=AAAA-MM-DD")
		}
		if from > to {
			return nil, apperr.Validation("período inválido: from maior que to")
		}
	}
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	query := store.DB.Model(&models.Event{}).Order("id DESC")
	if from != "" {
		query = query.Where("date >= ? AND date <= ?", from, to)
	}
	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]map[string]interface{}, 0, len(events))
	for _, e := range events {
		d := decorate.Event(decorate.ToMap(e), user.ID, s.roster)
		if ownedBy(d, user) {
			out = append(out, d)
		}
	}

	synthetic, err := s.contactEvents(store, user, from, to)
	if err != nil {
		return nil, err
	}
	out = append(out, synthetic...)

	sort.SliceStable(out, func(i, j int) bool {
		di, _ := out[i]["data"].(string)
		dj, _ := out[j]["data"].(string)
		return di < dj
	})
	return out, nil
}

// contactEvents generates calendar entries from follow-up contacts. They use
// the id scheme "contact-<contactId>" and are never persisted as events.
func (s *EventService) contactEvents(store *storage.Store, user *identity.User, from, to string) ([]map[string]interface{}, error) {
	query := store.DB.Model(&models.Contact{})
	if from != "" {
		query = query.Where("contact_date >= ? AND contact_date <= ?", from, to)
	}
	var contacts []models.Contact
	if err := query.Find(&contacts).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if len(contacts) == 0 {
		return nil, nil
	}

	clients := make(map[uint]*models.Client)
	today := decorate.Today()
	out := make([]map[string]interface{}, 0, len(contacts))
	for _, c := range contacts {
		client, ok := clients[c.ClientID]
		if !ok {
			var loaded models.Client
			err := store.DB.First(&loaded, c.ClientID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				clients[c.ClientID] = nil
				continue
			}
			if err != nil {
				return nil, apperr.Internal(err)
			}
			client = &loaded
			clients[c.ClientID] = client
		}
		if client == nil {
			continue
		}
		if ensureOwner(client.OwnerID, user, s.roster) != nil {
			continue
		}

		status := decorate.ContactStatus("", c.Completed, true, c.ContactDate, today)
		entry := map[string]interface{}{
			"id":          fmt.Sprintf("contact-%d", c.ID),
			"data":        c.ContactDate,
			"titulo":      "Contato pós-venda: " + client.Name,
			"descricao":   fmt.Sprintf("Acompanhamento de %d meses (compra de %s)", c.MonthOffset, c.PurchaseDate),
			"cor":         "#7c4dff",
			"tipo":        "contato",
			"contatoId":   c.ID,
			"compraId":    c.PurchaseID,
			"clienteId":   c.ClientID,
			"clienteNome": client.Name,
			"status":      status,
			"statusLabel": decorate.StatusLabel(status),
		}
		identity.AssignOwner(entry, user.ID)
		identity.AssignCompleted(entry, c.Completed)
		out = append(out, entry)
	}
	return out, nil
}

func (s *EventService) Create(user *identity.User, payload dto.EventPayload, raw map[string]interface{}) (map[string]interface{}, error) {
	if err := validateEventPayload(payload, true); err != nil {
		return nil, err
	}
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.checkEventClient(store, user, payload.ClientID.Ptr()); err != nil {
		return nil, err
	}

	owner := identity.ResolveOwner(raw, user.ID, s.roster)
	event := models.Event{
		Date:        payload.Date.Value,
		Title:       strings.TrimSpace(payload.Title.Value),
		Description: payload.Description.Ptr(),
		Color:       payload.Color.Ptr(),
		ClientID:    payload.ClientID.Ptr(),
		OwnerID:     owner,
	}
	if payload.Completed.Set && payload.Completed.Valid {
		event.Completed = payload.Completed.Value
	}
	if err := store.DB.Create(&event).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to create event: %w", err))
	}
	return decorate.Event(decorate.ToMap(event), owner, s.roster), nil
}

func (s *EventService) Update(user *identity.User, id uint, payload dto.EventPayload, raw map[string]interface{}) (map[string]interface{}, error) {
	if err := validateEventPayload(payload, false); err != nil {
		return nil, err
	}
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	event, err := loadEvent(store, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(event.OwnerID, user, s.roster); err != nil {
		return nil, err
	}

	if payload.Date.Set && payload.Date.Valid {
		event.Date = payload.Date.Value
	}
	if payload.Title.Set {
		event.Title = strings.TrimSpace(payload.Title.Value)
	}
	payload.Description.Apply(&event.Description)
	payload.Color.Apply(&event.Color)
	if payload.ClientID.Set {
		clientID := payload.ClientID.Ptr()
		if err := s.checkEventClient(store, user, clientID); err != nil {
			return nil, err
		}
		event.ClientID = clientID
	}
	if payload.Completed.Set {
		event.Completed = payload.Completed.Valid && payload.Completed.Value
	}

	if err := store.DB.Save(&event).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to update event: %w", err))
	}
	return decorate.Event(decorate.ToMap(event), user.ID, s.roster), nil
}

func (s *EventService) Delete(user *identity.User, id uint) error {
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	event, err := loadEvent(store, id)
	if err != nil {
		return err
	}
	if err := ensureOwner(event.OwnerID, user, s.roster); err != nil {
		return err
	}
	return store.DB.Delete(&models.Event{}, event.ID).Error
}

// checkEventClient validates a referenced client: it must exist in the
// requester's store (400) and belong to the requester (403).
func (s *EventService) checkEventClient(store *storage.Store, user *identity.User, clientID *uint) error {
	if clientID == nil {
		return nil
	}
	var client models.Client
	err := store.DB.First(&client, *clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation("clienteId não corresponde a um cliente cadastrado")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return ensureOwner(client.OwnerID, user, s.roster)
}

func loadEvent(store *storage.Store, id uint) (models.Event, error) {
	var event models.Event
	err := store.DB.First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return event, apperr.NotFound("evento não encontrado")
	}
	if err != nil {
		return event, apperr.Internal(err)
	}
	return event, nil
}

func validateEventPayload(payload dto.EventPayload, creating bool) error {
	if creating {
		if d := payload.Date.Ptr(); d == nil || !validDate(*d) {
			return apperr.Validation("data é obrigatória, use AAAA-MM-DD")
		}
		if t := payload.Title.Ptr(); t == nil || strings.TrimSpace(*t) == "" {
			return apperr.Validation("titulo é obrigatório")
		}
		return nil
	}
	if payload.Date.Set && (!payload.Date.Valid || !validDate(payload.Date.Value)) {
		return apperr.Validation("data inválida, use AAAA-MM-DD")
	}
	if payload.Title.Set && (!payload.Title.Valid || strings.TrimSpace(payload.Title.Value) == "") {
		return apperr.Validation("titulo não pode ficar vazio")
	}
	return nil
}
