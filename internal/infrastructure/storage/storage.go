// Package storage holds the persisted session slot backends. Every backend
// is shared by all clients and hands out a view scoped to one client id.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agri-oasis/storefront/internal/domain/session"
)

// ErrMissingClientID is returned when a scoped view is requested without id
var ErrMissingClientID = errors.New("storage: client id is required")

// Backend opens per-client slot views
type Backend interface {
	ForClient(clientID string) (session.Slots, error)
	Name() string
}

func checkClientID(clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return ErrMissingClientID
	}
	return nil
}

// slotKey is the flat key used by key-value backends
func slotKey(clientID, slot string) string {
	return fmt.Sprintf("session:%s:%s", clientID, slot)
}
