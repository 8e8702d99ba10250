package identity

// Accepted key spellings for the requester's identity, per request part. The
// scan order is fixed: headers before query before body, and within each part
// the listed order.
var (
	HeaderKeys = []string{"X-User-Id", "X-Usuario-Id", "X-User", "X-Owner-Id"}

	QueryKeys = []string{
		"userId", "user_id", "usuarioId", "usuario_id", "usuario",
		"responsavel", "ownerId", "owner_id", "owner", "vendedor", "user",
	}

	// Body candidates reuse the owner alias table.
	BodyKeys = OwnerAliases
)

// ResolveCandidates scans candidate values in precedence order and returns
// the first roster match. The boolean reports whether any non-empty candidate
// was supplied at all, which callers use to distinguish "no identity" (400)
// from "unknown identity" (403).
func (r *Registry) ResolveCandidates(candidates ...string) (*User, bool) {
	supplied := false
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		supplied = true
		if u := r.Resolve(raw); u != nil {
			return u, true
		}
	}
	return nil, supplied
}
