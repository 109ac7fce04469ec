// Package session holds the one piece of state that outlives a connection:
// the {walletId, username} identity pair.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNoIdentity means no wallet has been stored yet; the caller redirects to
// the login flow instead of proceeding.
var ErrNoIdentity = errors.New("no session identity")

// Identity is injected explicitly at connection construction. Nothing else in
// the client reads ambient storage.
type Identity struct {
	WalletID string `json:"wallet"`
	Username string `json:"username"`
}

// Store is a single-file persistence for one Identity.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the stored identity. A missing file or an empty wallet yields
// ErrNoIdentity.
func (s *Store) Load() (Identity, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Identity{}, ErrNoIdentity
	}
	if err != nil {
		return Identity{}, fmt.Errorf("read session: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("parse session: %w", err)
	}
	if id.WalletID == "" {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

// Save writes the identity, replacing any previous pair.
func (s *Store) Save(id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
