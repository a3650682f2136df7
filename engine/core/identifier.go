package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Owners maps every identifier handed out in this process to the value that owns it.
var (
	ownersMu sync.Mutex
	Owners   = map[string]interface{}{}
)

// IdentifierAcquireNewID returns a fresh random identifier bound to owner.
func IdentifierAcquireNewID(owner interface{}) string {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	id := uuid.NewString()
	Owners[id] = owner
	return id
}

// IdentifierClaim binds an identifier read back from disk to owner, taking it over
// from any previous owner. Invalid identifiers are replaced by a fresh one, which is
// returned.
func IdentifierClaim(id string, owner interface{}) string {
	if _, err := uuid.Parse(id); err != nil {
		return IdentifierAcquireNewID(owner)
	}

	ownersMu.Lock()
	defer ownersMu.Unlock()
	Owners[id] = owner
	return id
}

func IdentifierReleaseID(id string) error {
	ownersMu.Lock()
	defer ownersMu.Unlock()

	if _, ok := Owners[id]; !ok {
		return fmt.Errorf("identifier_release_id: id '%s' was never acquired. Nothing was done", id)
	}
	delete(Owners, id)
	return nil
}
