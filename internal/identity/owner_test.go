package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOwner(t *testing.T) {
	roster := DefaultRegistry()

	t.Run("first resolvable alias wins", func(t *testing.T) {
		entity := map[string]interface{}{
			"userId":      "alguem-fora-do-time",
			"usuario_id":  "rafael",
			"responsavel": "simone",
		}
		assert.Equal(t, "rafael", ResolveOwner(entity, "ana-claudia", roster))
	})

	t.Run("falls back to requester then default", func(t *testing.T) {
		assert.Equal(t, "simone", ResolveOwner(map[string]interface{}{}, "simone", roster))
		assert.Equal(t, DefaultUserID, ResolveOwner(map[string]interface{}{}, "ninguem", roster))
	})

	t.Run("non-string and empty values are skipped", func(t *testing.T) {
		entity := map[string]interface{}{
			"userId":   42,
			"owner":    "",
			"vendedor": "rafael",
		}
		assert.Equal(t, "rafael", ResolveOwner(entity, "", roster))
	})
}

func TestAssignOwner(t *testing.T) {
	entity := map[string]interface{}{"userId": "antigo"}
	AssignOwner(entity, "rafael")
	for _, key := range OwnerAliases {
		assert.Equal(t, "rafael", entity[key], "alias %s", key)
	}
}

func TestCompletedAliases(t *testing.T) {
	entity := map[string]interface{}{"concluido": true}
	completed, ok := CompletedFrom(entity)
	assert.True(t, ok)
	assert.True(t, completed)

	AssignCompleted(entity, false)
	for _, key := range CompletedAliases {
		assert.Equal(t, false, entity[key], "alias %s", key)
	}
}
