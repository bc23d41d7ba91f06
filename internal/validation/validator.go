package validation

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/Himess/delreg/internal/core"
)

// GrantEnvShape mirrors the environment guard expressions run against.
// Kept here so guards are compiled against the same shape the engine
// evaluates them with.
type GrantEnvShape struct {
	Owner    string `expr:"owner"`
	Delegate string `expr:"delegate"`
	Scope    string `expr:"scope"`
	Units    int    `expr:"units"`
}

// ValidateGuards checks guard rules for structural problems and
// compiles their expressions. The returned slice carries the compiled
// programs.
func ValidateGuards(guards []core.GuardRule) ([]core.GuardRule, error) {
	seenNames := make(map[string]struct{})
	var validGuards []core.GuardRule

	for i, guard := range guards {
		if guard.Name == "" {
			return nil, fmt.Errorf("guard #%d missing name", i)
		}
		if _, exists := seenNames[guard.Name]; exists {
			return nil, fmt.Errorf("guard name '%s' is not unique", guard.Name)
		}
		seenNames[guard.Name] = struct{}{}

		if guard.Expr == "" {
			return nil, fmt.Errorf("guard '%s' missing expr", guard.Name)
		}

		out, err := expr.Compile(guard.Expr, expr.Env(GrantEnvShape{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling expr for guard '%s': %w", guard.Name, err)
		}
		guard.CompiledExpr = out

		validGuards = append(validGuards, guard)
	}

	return validGuards, nil
}
