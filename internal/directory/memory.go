package directory

import (
	"context"
	"sync"

	"github.com/Himess/delreg/internal/core"
)

var _ core.OwnerDirectory = (*InMemoryDirectory)(nil)

// InMemoryDirectory is a mutable owner directory. Hosting code registers
// and removes owners at runtime; removing an owner immediately turns all
// of its delegations inactive without touching the registry.
type InMemoryDirectory struct {
	mu     sync.RWMutex
	owners map[core.Identity]map[core.Identity]struct{} // scope -> owners
}

func NewInMemory() *InMemoryDirectory {
	return &InMemoryDirectory{
		owners: make(map[core.Identity]map[core.Identity]struct{}),
	}
}

func (d *InMemoryDirectory) Register(owner, scope core.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()

	scopeOwners, ok := d.owners[scope]
	if !ok {
		scopeOwners = make(map[core.Identity]struct{})
		d.owners[scope] = scopeOwners
	}
	scopeOwners[owner] = struct{}{}
}

func (d *InMemoryDirectory) Remove(owner, scope core.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if scopeOwners, ok := d.owners[scope]; ok {
		delete(scopeOwners, owner)
	}
}

func (d *InMemoryDirectory) ControlsResource(_ context.Context, owner, scope core.Identity) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	scopeOwners, ok := d.owners[scope]
	if !ok {
		return false, nil
	}
	_, ok = scopeOwners[owner]
	return ok, nil
}
