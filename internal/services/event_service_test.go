package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/dto"
)

func isoDay(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestEventListRangeValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.events.List(env.userA, "2024-01-01", "bogus")
	requireCode(t, err, apperr.CodeValidation)

	_, err = env.events.List(env.userA, "2024-02-01", "2024-01-01")
	requireCode(t, err, apperr.CodeValidation)

	_, err = env.events.List(env.userA, "", "")
	require.NoError(t, err, "no range returns everything")
}

func TestEventCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.events.Create(env.userA, dto.EventPayload{Title: dto.Some("Sem data")}, map[string]interface{}{})
	requireCode(t, err, apperr.CodeValidation)

	_, err = env.events.Create(env.userA, dto.EventPayload{Date: dto.Some("2024-03-10")}, map[string]interface{}{})
	requireCode(t, err, apperr.CodeValidation)
}

func TestEventReferencedClientChecks(t *testing.T) {
	env := newTestEnv(t)

	// Unknown client id.
	unknown := uint(12345)
	_, err := env.events.Create(env.userA, dto.EventPayload{
		Date:     dto.Some("2024-03-10"),
		Title:    dto.Some("Entrega"),
		ClientID: dto.Some(unknown),
	}, map[string]interface{}{})
	requireCode(t, err, apperr.CodeValidation)

	// Client in the store but resolved to another owner.
	created, err := env.clients.Create(env.userA, dto.ClientPayload{Name: dto.Some("Iara")}, map[string]interface{}{})
	require.NoError(t, err)
	clientID := uint(created["id"].(float64))

	store, err := env.stores.ForUser(env.userA.ID)
	require.NoError(t, err)
	require.NoError(t, store.DB.Table("clients").Where("id = ?", clientID).
		Update("owner_id", env.userB.ID).Error)

	_, err = env.events.Create(env.userA, dto.EventPayload{
		Date:     dto.Some("2024-03-10"),
		Title:    dto.Some("Entrega"),
		ClientID: dto.Some(clientID),
	}, map[string]interface{}{})
	requireCode(t, err, apperr.CodeNotAuthorized)
}

func TestEventListNeverLeaksForeignRecords(t *testing.T) {
	env := newTestEnv(t)

	mine, err := env.events.Create(env.userA, dto.EventPayload{
		Date:  dto.Some("2024-01-10"),
		Title: dto.Some("Aniversário da loja"),
	}, map[string]interface{}{})
	require.NoError(t, err)

	foreign, err := env.events.Create(env.userA, dto.EventPayload{
		Date:  dto.Some("2024-01-20"),
		Title: dto.Some("Evento legado"),
	}, map[string]interface{}{})
	require.NoError(t, err)

	store, err := env.stores.ForUser(env.userA.ID)
	require.NoError(t, err)
	require.NoError(t, store.DB.Table("events").
		Where("id = ?", uint(foreign["id"].(float64))).
		Update("owner_id", env.userB.ID).Error)

	list, err := env.events.List(env.userA, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine["titulo"], list[0]["titulo"])
}

func TestEventListMergesSyntheticContactEvents(t *testing.T) {
	env := newTestEnv(t)

	inRange := isoDay(5)
	created, err := env.clients.Create(env.userA, dto.ClientPayload{
		Name: dto.Some("João Otávio"),
		Purchases: dto.Some([]dto.PurchasePayload{{
			Date: dto.Some(isoDay(-90)),
			Contacts: dto.Some([]dto.ContactPayload{{
				ContactDate: dto.Some(inRange),
				MonthOffset: dto.Some(3),
			}}),
		}}),
	}, map[string]interface{}{})
	require.NoError(t, err)

	purchases := created["compras"].([]interface{})
	contacts := purchases[0].(map[string]interface{})["contatos"].([]interface{})
	contactID := uint(contacts[0].(map[string]interface{})["id"].(float64))

	_, err = env.events.Create(env.userA, dto.EventPayload{
		Date:  dto.Some(isoDay(2)),
		Title: dto.Some("Mutirão de exames"),
	}, map[string]interface{}{})
	require.NoError(t, err)

	list, err := env.events.List(env.userA, isoDay(0), isoDay(10))
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Sorted ascending by date: stored event first, synthetic after.
	assert.Equal(t, "Mutirão de exames", list[0]["titulo"])
	synthetic := list[1]
	assert.Equal(t, fmt.Sprintf("contact-%d", contactID), synthetic["id"])
	assert.Equal(t, "contato", synthetic["tipo"])
	assert.Equal(t, "pending", synthetic["status"])
	assert.Equal(t, env.userA.ID, synthetic["userId"])
	assert.Equal(t, "João Otávio", synthetic["clienteNome"])

	// Synthetic entries are never persisted as events.
	stored, err := env.events.List(env.userA, isoDay(0), isoDay(1))
	require.NoError(t, err)
	for _, e := range stored {
		assert.NotEqual(t, "contato", e["tipo"])
	}
}

func TestEventPartialUpdate(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.events.Create(env.userA, dto.EventPayload{
		Date:        dto.Some("2024-04-01"),
		Title:       dto.Some("Promoção"),
		Description: dto.Some("Desconto em lentes"),
	}, map[string]interface{}{})
	require.NoError(t, err)
	id := uint(created["id"].(float64))

	updated, err := env.events.Update(env.userA, id, dto.EventPayload{
		Description: dto.Null[string](),
		Completed:   dto.Some(true),
	}, map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, "Promoção", updated["titulo"], "absent field unchanged")
	assert.Nil(t, updated["descricao"], "null clears")
	assert.Equal(t, true, updated["completed"])

	_, err = env.events.Update(env.userA, 777, dto.EventPayload{}, map[string]interface{}{})
	requireCode(t, err, apperr.CodeNotFound)
}
