package directory

import (
	"fmt"

	"github.com/Himess/delreg/internal/config"
	"github.com/Himess/delreg/internal/core"
)

// Build constructs the owner directory declared in the config.
func Build(cfg config.DirectoryConfig) (core.OwnerDirectory, error) {
	switch cfg.Type {
	case "static", "":
		dir, err := NewStatic(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("building static directory: %w", err)
		}
		return dir, nil
	case "memory":
		dir := NewInMemory()
		// a memory directory may still be seeded from config
		seed, err := NewStatic(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("seeding memory directory: %w", err)
		}
		for scope, owners := range seed.owners {
			for owner := range owners {
				dir.Register(owner, scope)
			}
		}
		return dir, nil
	default:
		return nil, fmt.Errorf("unknown directory type %q", cfg.Type)
	}
}
