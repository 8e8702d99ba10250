package decorate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oticalume/otica-crm/internal/identity"
)

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestClientDecorationIsIdempotent(t *testing.T) {
	roster := identity.DefaultRegistry()
	record := map[string]interface{}{
		"id":         float64(1),
		"nome":       "Ana",
		"interesses": []interface{}{"Lentes", "lentes", " ", "armações"},
		"compras": []interface{}{
			map[string]interface{}{
				"id":   float64(2),
				"data": "2024-05-10",
				"contatos": []interface{}{
					map[string]interface{}{"id": float64(7), "dataContato": day(10), "completed": false},
				},
			},
			map[string]interface{}{"id": float64(1), "data": "2024-01-03", "contatos": []interface{}{}},
		},
	}

	once := Client(record, "rafael", roster)
	twice := Client(once, "rafael", roster)
	assert.Equal(t, once, twice)
}

func TestClientDecorationDerivedFields(t *testing.T) {
	roster := identity.DefaultRegistry()
	record := map[string]interface{}{
		"nome":       "Ana",
		"usuario_id": "rafael",
		"interesses": []interface{}{"Lentes", "lentes", "", "Armações", "armações "},
		"compras": []interface{}{
			map[string]interface{}{"id": float64(3), "data": "2024-06-01"},
			map[string]interface{}{"id": float64(1), "data": "2023-12-24"},
			map[string]interface{}{"id": float64(2), "data": "2024-02-02"},
		},
	}

	d := Client(record, "simone", roster)

	assert.Equal(t, "rafael", d["userId"])
	assert.Equal(t, "rafael", d["vendedor"], "every alias carries the resolved owner")
	assert.Equal(t, []interface{}{"Lentes", "Armações"}, d["interesses"])
	assert.Equal(t, "2024-06-01", d["lastPurchase"])
	assert.Equal(t, "2024-06-01", d["ultimaCompra"])

	purchases := d["compras"].([]interface{})
	require.Len(t, purchases, 3)
	dates := []string{}
	for _, p := range purchases {
		dates = append(dates, p.(map[string]interface{})["data"].(string))
	}
	assert.Equal(t, []string{"2023-12-24", "2024-02-02", "2024-06-01"}, dates)
}

func TestContactStatusPrecedence(t *testing.T) {
	today := "2024-06-15"
	cases := []struct {
		name     string
		explicit string
		flag     bool
		hasFlag  bool
		date     string
		want     string
	}{
		{"explicit status wins", "overdue", true, true, "2099-01-01", "overdue"},
		{"completed flag", "", true, true, "2000-01-01", "completed"},
		{"overdue when past and not completed", "", false, true, "2024-06-14", "overdue"},
		{"pending when today", "", false, true, "2024-06-15", "pending"},
		{"pending when future", "", false, true, "2024-07-01", "pending"},
		{"pending when no date", "", false, false, "", "pending"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContactStatus(tc.explicit, tc.flag, tc.hasFlag, tc.date, today))
		})
	}
}

func TestContactDecoration(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		d := Contact(map[string]interface{}{"id": float64(1), "dataContato": day(-30), "completed": true}, "rafael")
		assert.Equal(t, "completed", d["status"])
		assert.Equal(t, "Concluído", d["statusLabel"])
		assert.Equal(t, true, d["concluido"])
	})

	t.Run("overdue", func(t *testing.T) {
		d := Contact(map[string]interface{}{"dataContato": day(-1), "completed": false}, "rafael")
		assert.Equal(t, "overdue", d["status"])
		assert.Equal(t, "Atrasado", d["statusLabel"])
	})

	t.Run("pending", func(t *testing.T) {
		d := Contact(map[string]interface{}{"dataContato": day(5), "completed": false}, "rafael")
		assert.Equal(t, "pending", d["status"])
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Contact(map[string]interface{}{"dataContato": day(-1), "completed": false}, "rafael")
		assert.Equal(t, once, Contact(once, "rafael"))
	})
}

func TestEventDecoration(t *testing.T) {
	roster := identity.DefaultRegistry()
	d := Event(map[string]interface{}{"id": float64(4), "titulo": "Revisão", "completed": true}, "simone", roster)
	assert.Equal(t, "simone", d["userId"])
	assert.Equal(t, true, d["realizado"])
	assert.Equal(t, d, Event(d, "simone", roster))
}
