package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/decorate"
	"github.com/oticalume/otica-crm/internal/identity"
	"github.com/oticalume/otica-crm/internal/models"
	"github.com/oticalume/otica-crm/internal/storage"
)

type ContactService struct {
	stores *storage.Factory
	roster *identity.Registry
}

func NewContactService(stores *storage.Factory, roster *identity.Registry) *ContactService {
	return &ContactService{stores: stores, roster: roster}
}

// SetCompleted toggles a follow-up contact. Ownership is checked through the
// contact's client before the mutation; the completion timestamp follows the
// flag.
func (s *ContactService) SetCompleted(user *identity.User, id uint, completed bool) (map[string]interface{}, error) {
	store, err := s.stores.ForUser(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var contact models.Contact
	err = store.DB.First(&contact, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("contato não encontrado")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var client models.Client
	err = store.DB.First(&client, contact.ClientID).Error
	if err == nil {
		if err := ensureOwner(client.OwnerID, user, s.roster); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	store.Lock()
	defer store.Unlock()

	contact.Completed = completed
	if completed {
		now := time.Now()
		contact.CompletedAt = &now
	} else {
		contact.CompletedAt = nil
	}
	if err := store.DB.Save(&contact).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to update contact: %w", err))
	}

	return decorate.Contact(decorate.ToMap(contact), user.ID), nil
}
