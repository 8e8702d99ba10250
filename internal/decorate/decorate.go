// Package decorate expands stored records into the wire shapes the frontend
// expects: every owner and completion alias filled in, derived fields
// computed, nested purchases and contacts decorated. Decoration is pure and
// idempotent; decorating an already-decorated object changes nothing.
package decorate

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/oticalume/otica-crm/internal/identity"
)

// ToMap converts any stored record to its generic wire form.
func ToMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

func clone(m map[string]interface{}) map[string]interface{} {
	return ToMap(m)
}

// Today returns the reference date for status derivation.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// Client decorates a client record. fallbackOwner defaults owner resolution
// for this record and everything nested under it.
func Client(m map[string]interface{}, fallbackOwner string, roster *identity.Registry) map[string]interface{} {
	return clientAt(m, fallbackOwner, roster, Today())
}

func clientAt(m map[string]interface{}, fallbackOwner string, roster *identity.Registry, today string) map[string]interface{} {
	out := clone(m)
	owner := identity.ResolveOwner(out, fallbackOwner, roster)
	identity.AssignOwner(out, owner)

	out["interesses"] = cleanInterests(out["interesses"])

	purchases := asList(out["compras"])
	decorated := make([]interface{}, 0, len(purchases))
	last := ""
	for _, raw := range purchases {
		p, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		dp := purchaseAt(p, owner, today)
		if d, _ := dp["data"].(string); d > last {
			last = d
		}
		decorated = append(decorated, dp)
	}
	sort.SliceStable(decorated, func(i, j int) bool {
		di, _ := decorated[i].(map[string]interface{})["data"].(string)
		dj, _ := decorated[j].(map[string]interface{})["data"].(string)
		return di < dj
	})
	out["compras"] = decorated

	if last != "" {
		out["ultimaCompra"] = last
		out["lastPurchase"] = last
	} else {
		out["ultimaCompra"] = nil
		out["lastPurchase"] = nil
	}
	return out
}

// Purchase decorates a purchase and its embedded contacts.
func Purchase(m map[string]interface{}, owner string) map[string]interface{} {
	return purchaseAt(m, owner, Today())
}

func purchaseAt(m map[string]interface{}, owner string, today string) map[string]interface{} {
	out := clone(m)
	identity.AssignOwner(out, owner)

	contacts := asList(out["contatos"])
	decorated := make([]interface{}, 0, len(contacts))
	for _, raw := range contacts {
		c, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		decorated = append(decorated, contactAt(c, owner, today))
	}
	out["contatos"] = decorated
	return out
}

// Contact decorates a follow-up contact, deriving its status.
func Contact(m map[string]interface{}, owner string) map[string]interface{} {
	return contactAt(m, owner, Today())
}

func contactAt(m map[string]interface{}, owner string, today string) map[string]interface{} {
	out := clone(m)
	identity.AssignOwner(out, owner)

	explicit, _ := out["status"].(string)
	completed, hasFlag := identity.CompletedFrom(out)
	date, _ := out["dataContato"].(string)
	status := ContactStatus(explicit, completed, hasFlag, date, today)

	out["status"] = status
	out["statusLabel"] = StatusLabel(status)
	if hasFlag {
		identity.AssignCompleted(out, completed)
	} else {
		identity.AssignCompleted(out, status == "completed")
	}
	return out
}

// Event decorates a stored calendar event.
func Event(m map[string]interface{}, fallbackOwner string, roster *identity.Registry) map[string]interface{} {
	out := clone(m)
	owner := identity.ResolveOwner(out, fallbackOwner, roster)
	identity.AssignOwner(out, owner)
	completed, _ := identity.CompletedFrom(out)
	identity.AssignCompleted(out, completed)
	return out
}

// ContactStatus derives a contact's status. Precedence: explicit status
// field, then the completed flag, then the date comparison, then "pending".
func ContactStatus(explicit string, completed bool, hasFlag bool, contactDate string, today string) string {
	if explicit != "" {
		return explicit
	}
	if hasFlag && completed {
		return "completed"
	}
	if contactDate != "" && contactDate < today {
		return "overdue"
	}
	return "pending"
}

// StatusLabel maps a status to its display label.
func StatusLabel(status string) string {
	switch status {
	case "completed":
		return "Concluído"
	case "overdue":
		return "Atrasado"
	default:
		return "Pendente"
	}
}

// cleanInterests deduplicates the interest list case-insensitively and drops
// blank entries, preserving first-seen order and spelling.
func cleanInterests(raw interface{}) []interface{} {
	items := asList(raw)
	seen := make(map[string]bool, len(items))
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}

func asList(raw interface{}) []interface{} {
	if list, ok := raw.([]interface{}); ok {
		return list
	}
	return nil
}
