package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/decorate"
	"github.com/oticalume/otica-crm/internal/dto"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/models"
	"github.com/oticalume/otica-crm/internal/storage"
)

// ClientPageSize is fixed; the frontend paginates in steps of ten.
const ClientPageSize = 10

type ClientService struct {
	stores *storage.Factory
	roster *identity.Registry
}

func NewClientService(stores *storage.Factory, roster *identity.Registry) *ClientService {
	return &ClientService{stores: stores, roster: roster}
}

// List returns the requester's clients, newest-id-first, optionally filtered
// by a name/email/phone substring. Ownership is re-derived per record even
// though the store is already user-scoped: fallback ids can leak foreign
// rows, and those must never surface.
func (s *ClientService) List(user *identity.User, q string, page int) (*dto.ClientListResponse, error) {
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if page < 1 {
		page = 1
	}

	query := store.DB.Model(&models.Client{}).
		Preload("Purchases").
		Preload("Purchases.Contacts").
		Order("id DESC")
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := query.Find(&clients).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	owned := make([]map[string]interface{}, 0, len(clients))
	for _, c := range clients {
		d := decorate.Client(decorate.ToMap(c), user.ID, s.roster)
		if ownedBy(d, user) {
			owned = append(owned, d)
		}
	}

	total := int64(len(owned))
	totalPages := (len(owned) + ClientPageSize - 1) / ClientPageSize
	start := (page - 1) * ClientPageSize
	if start > len(owned) {
		start = len(owned)
	}
	end := start + ClientPageSize
	if end > len(owned) {
		end = len(owned)
	}

	return &dto.ClientListResponse{
		Data:       owned[start:end],
		Page:       page,
		PageSize:   ClientPageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// ListAll returns every client the requester owns, undecorated. Used by the
// spreadsheet export.
func (s *ClientService) ListAll(user *identity.User) ([]models.Client, error) {
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	var clients []models.Client
	if err := store.DB.Preload("Purchases").Order("id").Find(&clients).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	owned := clients[:0]
	for _, c := range clients {
		if ensureOwner(c.OwnerID, user, s.roster) == nil {
			owned = append(owned, c)
		}
	}
	return owned, nil
}

func (s *ClientService) Get(user *identity.User, id uint) (map[string]interface{}, error) {
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	client, err := loadClient(store, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(client.OwnerID, user, s.roster); err != nil {
		return nil, err
	}
	return decorate.Client(decorate.ToMap(client), user.ID, s.roster), nil
}

// Create validates the payload, resolves the owner from the request body's
// aliased fields (falling back to the requester) and inserts the client with
// its embedded purchases. The CPF uniqueness check runs under the store
// mutex so check-then-insert cannot interleave.
func (s *ClientService) Create(user *identity.User, payload dto.ClientPayload, raw map[string]interface{}) (map[string]interface{}, error) {
	if err := validateClientPayload(payload, true); err != nil {
		return nil, err
	}
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	owner := identity.ResolveOwner(raw, user.ID, s.roster)

	client := models.Client{
		Name:           strings.TrimSpace(payload.Name.Value),
		Phone:          payload.Phone.Ptr(),
		Email:          payload.Email.Ptr(),
		Gender:         payload.Gender.Ptr(),
		BirthDate:      payload.BirthDate.Ptr(),
		ClientType:     payload.ClientType.Ptr(),
		Tag:            payload.Tag.Ptr(),
		AcceptsContact: true,
		OwnerID:        owner,
	}
	if payload.AcceptsContact.Set && payload.AcceptsContact.Valid {
		client.AcceptsContact = payload.AcceptsContact.Value
	}
	if cpf := payload.CPF.Ptr(); cpf != nil {
		client.CPF = cpf
		client.CPFDigits = identity.NormalizeCPF(*cpf)
	}
	if interests := payload.Interests.Ptr(); interests != nil {
		client.Interests = marshalJSON(*interests)
	}
	if purchases := payload.Purchases.Ptr(); purchases != nil {
		for _, pp := range *purchases {
			client.Purchases = append(client.Purchases, buildPurchase(pp, models.Purchase{}))
		}
		sortPurchases(client.Purchases)
	}

	store.Lock()
	defer store.Unlock()

	if err := s.checkCPFConflict(store, client.CPFDigits, 0); err != nil {
		return nil, err
	}
	if err := store.DB.Create(&client).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to create client: %w", err))
	}
	if err := linkContacts(store, &client); err != nil {
		return nil, err
	}
	return decorate.Client(decorate.ToMap(client), owner, s.roster), nil
}

// Update merges a partial payload into the stored client. Absent fields keep
// their stored value, explicit nulls clear, values replace. Purchases upsert
// by id and the list is re-sorted ascending by date afterwards.
func (s *ClientService) Update(user *identity.User, id uint, payload dto.ClientPayload, raw map[string]interface{}) (map[string]interface{}, error) {
	if err := validateClientPayload(payload, false); err != nil {
		return nil, err
	}
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	client, err := loadClient(store, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(client.OwnerID, user, s.roster); err != nil {
		return nil, err
	}

	store.Lock()
	defer store.Unlock()

	if payload.Name.Set {
		client.Name = strings.TrimSpace(payload.Name.Value)
	}
	payload.Phone.Apply(&client.Phone)
	payload.Email.Apply(&client.Email)
	payload.Gender.Apply(&client.Gender)
	payload.BirthDate.Apply(&client.BirthDate)
	payload.ClientType.Apply(&client.ClientType)
	payload.Tag.Apply(&client.Tag)
	if payload.AcceptsContact.Set {
		client.AcceptsContact = payload.AcceptsContact.Valid && payload.AcceptsContact.Value
	}
	if payload.CPF.Set {
		if !payload.CPF.Valid {
			client.CPF = nil
			client.CPFDigits = ""
		} else {
			cpf := payload.CPF.Value
			client.CPF = &cpf
			client.CPFDigits = identity.NormalizeCPF(cpf)
		}
	}
	if payload.Interests.Set {
		if !payload.Interests.Valid {
			client.Interests = nil
		} else {
			client.Interests = marshalJSON(payload.Interests.Value)
		}
	}
	if purchases := payload.Purchases.Ptr(); purchases != nil {
		upsertPurchases(&client, *purchases)
	}

	if err := s.checkCPFConflict(store, client.CPFDigits, client.ID); err != nil {
		return nil, err
	}
	if err := store.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&client).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to update client: %w", err))
	}
	if err := linkContacts(store, &client); err != nil {
		return nil, err
	}

	fresh, err := loadClient(store, client.ID)
	if err != nil {
		return nil, err
	}
	return decorate.Client(decorate.ToMap(fresh), user.ID, s.roster), nil
}

func (s *ClientService) Delete(user *identity.User, id uint) error {
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	client, err := loadClient(store, id)
	if err != nil {
		return err
	}
	if err := ensureOwner(client.OwnerID, user, s.roster); err != nil {
		return err
	}

	store.Lock()
	defer store.Unlock()

	return store.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Contact{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Client{}, client.ID).Error
	})
}

func (s *ClientService) checkCPFConflict(store *storage.Store, digits string, excludeID uint) error {
	if digits == "" {
		return nil
	}
	var count int64
	query := store.DB.Model(&models.Client{}).Where("cpf_digits = ?", digits)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperr.Internal(err)
	}
	if count > 0 {
		return apperr.Conflict("CPF já cadastrado para outro cliente")
	}
	return nil
}

// linkContacts backfills the denormalized client id on contacts inserted
// together with a new client or purchase. The insert fills the purchase
// association key but never this column, and the ownership check and the
// synthetic calendar entries both walk contact -> client through it.
func linkContacts(store *storage.Store, client *models.Client) error {
	var stale []uint
	for pi := range client.Purchases {
		for ci := range client.Purchases[pi].Contacts {
			contact := &client.Purchases[pi].Contacts[ci]
			if contact.ClientID == client.ID {
				continue
			}
			contact.ClientID = client.ID
			if contact.ID != 0 {
				stale = append(stale, contact.ID)
			}
		}
	}
	if len(stale) == 0 {
		return nil
	}
	err := store.DB.Model(&models.Contact{}).
		Where("id IN ?", stale).
		Update("client_id", client.ID).Error
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to link contacts: %w", err))
	}
	return nil
}

func loadClient(store *storage.Store, id uint) (models.Client, error) {
	var client models.Client
	err := store.DB.
		Preload("Purchases").
		Preload("Purchases.Contacts").
		First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return client, apperr.NotFound("cliente não encontrado")
	}
	if err != nil {
		return client, apperr.Internal(err)
	}
	return client, nil
}

func validateClientPayload(payload dto.ClientPayload, creating bool) error {
	if creating && (!payload.Name.Set || !payload.Name.Valid || strings.TrimSpace(payload.Name.Value) == "") {
		return apperr.Validation("nome é obrigatório")
	}
	if !creating && payload.Name.Set && (!payload.Name.Valid || strings.TrimSpace(payload.Name.Value) == "") {
		return apperr.Validation("nome não pode ficar vazio")
	}
	if bd := payload.BirthDate.Ptr(); bd != nil && !validDate(*bd) {
		return apperr.Validation("dataNascimento inválida, use AAAA-MM-DD")
	}
	if purchases := payload.Purchases.Ptr(); purchases != nil {
		for _, pp := range *purchases {
			if d := pp.Date.Ptr(); d != nil && !validDate(*d) {
				return apperr.Validation("data da compra inválida, use AAAA-MM-DD")
			}
			if contacts := pp.Contacts.Ptr(); contacts != nil {
				for _, cp := range *contacts {
					if d := cp.ContactDate.Ptr(); d != nil && !validDate(*d) {
						return apperr.Validation("dataContato inválida, use AAAA-MM-DD")
					}
				}
			}
		}
	}
	return nil
}

// upsertPurchases applies purchase payloads onto the client: a payload whose
// id matches an existing purchase updates it in place, anything else is
// appended as new. The list is re-sorted ascending by date afterwards.
func upsertPurchases(client *models.Client, payloads []dto.PurchasePayload) {
	for _, pp := range payloads {
		if id := pp.ID.Ptr(); id != nil {
			updated := false
			for i := range client.Purchases {
				if client.Purchases[i].ID == *id {
					client.Purchases[i] = buildPurchase(pp, client.Purchases[i])
					updated = true
					break
				}
			}
			if updated {
				continue
			}
		}
		client.Purchases = append(client.Purchases, buildPurchase(pp, models.Purchase{}))
	}
	sortPurchases(client.Purchases)
}

// buildPurchase merges a payload onto an existing purchase (zero value for a
// new one) with the same tri-state semantics as client fields.
func buildPurchase(pp dto.PurchasePayload, existing models.Purchase) models.Purchase {
	p := existing
	if pp.Date.Set && pp.Date.Valid {
		p.Date = pp.Date.Value
	}
	pp.Frame.Apply(&p.Frame)
	pp.Lens.Apply(&p.Lens)
	pp.FrameValue.Apply(&p.FrameValue)
	pp.LensValue.Apply(&p.LensValue)
	pp.Total.Apply(&p.Total)
	pp.Invoice.Apply(&p.Invoice)
	if pp.Prescription.Set {
		if !pp.Prescription.Valid {
			p.Prescription = nil
		} else {
			p.Prescription = marshalJSON(pp.Prescription.Value)
		}
	}
	if contacts := pp.Contacts.Ptr(); contacts != nil {
		p.Contacts = mergeContacts(p, *contacts)
	}
	return p
}

func mergeContacts(p models.Purchase, payloads []dto.ContactPayload) []models.Contact {
	out := p.Contacts
	for _, cp := range payloads {
		if id := cp.ID.Ptr(); id != nil {
			updated := false
			for i := range out {
				if out[i].ID == *id {
					out[i] = buildContact(cp, out[i], p)
					updated = true
					break
				}
			}
			if updated {
				continue
			}
		}
		out = append(out, buildContact(cp, models.Contact{}, p))
	}
	return out
}

func buildContact(cp dto.ContactPayload, existing models.Contact, p models.Purchase) models.Contact {
	c := existing
	c.ClientID = p.ClientID
	if cp.ContactDate.Set && cp.ContactDate.Valid {
		c.ContactDate = cp.ContactDate.Value
	}
	if cp.PurchaseDate.Set && cp.PurchaseDate.Valid {
		c.PurchaseDate = cp.PurchaseDate.Value
	} else if c.PurchaseDate == "" {
		c.PurchaseDate = p.Date
	}
	if cp.MonthOffset.Set && cp.MonthOffset.Valid {
		c.MonthOffset = cp.MonthOffset.Value
	}
	if cp.Completed.Set {
		completed := cp.Completed.Valid && cp.Completed.Value
		if completed && !c.Completed {
			now := time.Now()
			c.CompletedAt = &now
		}
		if !completed {
			c.CompletedAt = nil
		}
		c.Completed = completed
	}
	return c
}

func sortPurchases(purchases []models.Purchase) {
	sort.SliceStable(purchases, func(i, j int) bool {
		return purchases[i].Date < purchases[j].Date
	})
}

func marshalJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
