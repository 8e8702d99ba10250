package identity

// OwnerAliases is every key spelling the frontend has ever used for the
// owning user of a record, in resolution precedence order. The storage layer
// keeps a single canonical owner column; these aliases exist only at the
// request/response boundary.
var OwnerAliases = []string{
	"userId",
	"user_id",
	"usuarioId",
	"usuario_id",
	"usuario",
	"responsavelId",
	"responsavel_id",
	"responsavel",
	"ownerId",
	"owner_id",
	"owner",
	"vendedorId",
	"vendedor_id",
	"vendedor",
	"atendente",
	"consultor",
	"createdBy",
	"created_by",
	"criadoPor",
	"criado_por",
}

// CompletedAliases are the synonymous keys for completion flags on contacts
// and events.
var CompletedAliases = []string{
	"completed",
	"concluido",
	"concluida",
	"done",
	"realizado",
	"finalizado",
	"feito",
}

// ResolveOwner scans the aliased owner fields of a wire object in order; the
// first value that resolves against the roster wins. When nothing resolves it
// falls back to the normalized fallback id, and ultimately to the default
// user. The lenient fallback is deliberate: orphaned and legacy records
// surface under the requester (or the default tenant) instead of erroring.
func ResolveOwner(entity map[string]interface{}, fallback string, roster *Registry) string {
	for _, key := range OwnerAliases {
		raw, ok := entity[key]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok || s == "" {
			continue
		}
		if u := roster.Resolve(s); u != nil {
			return u.ID
		}
	}
	if u := roster.Resolve(fallback); u != nil {
		return u.ID
	}
	return DefaultUserID
}

// AssignOwner writes the canonical owner id into every alias field so that
// every consumer, whichever key it reads, sees the same value.
func AssignOwner(entity map[string]interface{}, userID string) {
	for _, key := range OwnerAliases {
		entity[key] = userID
	}
}

// CompletedFrom reads the completion flag through its aliases. The second
// return reports whether any alias was present with a boolean value.
func CompletedFrom(entity map[string]interface{}) (bool, bool) {
	for _, key := range CompletedAliases {
		if raw, ok := entity[key]; ok {
			if b, ok := raw.(bool); ok {
				return b, true
			}
		}
	}
	return false, false
}

// AssignCompleted mirrors the completion flag into every alias.
func AssignCompleted(entity map[string]interface{}, completed bool) {
	for _, key := range CompletedAliases {
		entity[key] = completed
	}
}
