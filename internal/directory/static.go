package directory

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/Himess/delreg/internal/core"
)

var _ core.OwnerDirectory = (*StaticDirectory)(nil)

// StaticDirectory answers ownership questions from a fixed scope->owners
// table declared in the server config. It never changes at runtime.
type StaticDirectory struct {
	owners map[core.Identity]map[core.Identity]struct{} // scope -> owners
}

type staticConfig struct {
	// Scopes maps a scope identifier to the owners that control a
	// resource under it.
	Scopes map[string][]string `mapstructure:"scopes"`
}

func NewStatic(rawConfig map[string]any) (*StaticDirectory, error) {
	var cfg staticConfig
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("decoding static directory config: %w", err)
	}

	owners := make(map[core.Identity]map[core.Identity]struct{})
	for scope, scopeOwners := range cfg.Scopes {
		set := make(map[core.Identity]struct{}, len(scopeOwners))
		for _, owner := range scopeOwners {
			set[core.Identity(owner)] = struct{}{}
		}
		owners[core.Identity(scope)] = set
	}

	return &StaticDirectory{owners: owners}, nil
}

func (d *StaticDirectory) ControlsResource(_ context.Context, owner, scope core.Identity) (bool, error) {
	scopeOwners, ok := d.owners[scope]
	if !ok {
		return false, nil
	}
	_, ok = scopeOwners[owner]
	return ok, nil
}
