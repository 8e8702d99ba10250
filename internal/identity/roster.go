package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// DefaultUserID is the tenant that orphaned and legacy records fall back to.
const DefaultUserID = "otica"

// User is a static roster entry. The roster is defined at process start and
// never mutated afterwards.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"nome"`
	AccessLevel string `json:"nivelAcesso"`
	Role        string `json:"funcao"`
}

type rosterFile struct {
	Users []User `json:"usuarios"`
}

// Registry holds the fixed user roster, keyed by normalized id.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*User
	order []string
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*User)}
}

// DefaultRegistry returns the built-in roster used when no roster file is
// configured.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, u := range []User{
		{ID: "otica", Name: "Ótica Lume", AccessLevel: "admin", Role: "gerente"},
		{ID: "ana-claudia", Name: "Ana Cláudia", AccessLevel: "full", Role: "vendedora"},
		{ID: "rafael", Name: "Rafael", AccessLevel: "full", Role: "vendedor"},
		{ID: "simone", Name: "Simone", AccessLevel: "limited", Role: "atendente"},
	} {
		r.Register(u)
	}
	return r
}

// LoadFromFile reads a roster from a JSON file with the same shape the
// frontend ships ({"usuarios": [...]}).
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var file rosterFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	if len(file.Users) == 0 {
		return nil, fmt.Errorf("roster file %s has no users", path)
	}

	r := NewRegistry()
	for _, u := range file.Users {
		r.Register(u)
	}
	return r, nil
}

func (r *Registry) Register(u User) {
	id := Normalize(u.ID)
	if id == "" {
		return
	}
	u.ID = id
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		r.order = append(r.order, id)
	}
	r.users[id] = &u
}

// Resolve matches a raw identifier against the roster: first by normalized
// id, then by normalized display name. Returns nil when nothing matches.
func (r *Registry) Resolve(raw string) *User {
	key := Normalize(raw)
	if key == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[key]; ok {
		return u
	}
	for _, id := range r.order {
		if Normalize(r.users[id].Name) == key {
			return r.users[id]
		}
	}
	return nil
}

func (r *Registry) Exists(raw string) bool {
	return r.Resolve(raw) != nil
}

// All returns the roster in registration order.
func (r *Registry) All() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.users[id])
	}
	return out
}
