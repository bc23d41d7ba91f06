package engine

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/rs/zerolog/log"

	"github.com/Himess/delreg/internal/core"
)

var ErrGuardDenied = fmt.Errorf("grant denied by guard rule")

// GrantEnv is the evaluation environment exposed to guard expressions.
type GrantEnv struct {
	Owner    string `expr:"owner"`
	Delegate string `expr:"delegate"`
	Scope    string `expr:"scope"`
	Units    int    `expr:"units"`
}

// Engine evaluates grant requests against the configured guard rules.
type Engine struct {
	guards []core.GuardRule
}

// New creates a new Engine with the given guards. Guards are expected to
// have been compiled by validation.ValidateGuards already.
func New(guards []core.GuardRule) *Engine {
	return &Engine{
		guards: guards,
	}
}

// Check evaluates every guard whose scope matches the request. It
// returns the name of the first failing guard together with
// ErrGuardDenied, or "" and nil when all guards pass.
func (e *Engine) Check(env GrantEnv) (string, error) {
	for _, guard := range e.guards {
		if !scopeMatches(guard, env) {
			continue
		}
		if !passes(guard, env) {
			return guard.Name, fmt.Errorf("%w: %s", ErrGuardDenied, guard.Name)
		}
	}
	return "", nil
}

// Trace evaluates all guards and reports per-guard results without
// short-circuiting. Used by the admin explain endpoint.
func (e *Engine) Trace(env GrantEnv) []core.GuardResult {
	results := make([]core.GuardResult, 0, len(e.guards))
	for _, guard := range e.guards {
		if !scopeMatches(guard, env) {
			results = append(results, core.GuardResult{
				Rule:    guard.Name,
				Skipped: true,
				Reason:  fmt.Sprintf("scope mismatch: guard applies to '%s'", guard.Scope),
			})
			continue
		}
		if passes(guard, env) {
			results = append(results, core.GuardResult{Rule: guard.Name, Passed: true})
		} else {
			results = append(results, core.GuardResult{
				Rule:   guard.Name,
				Reason: "expression evaluated to false",
			})
		}
	}
	return results
}

func scopeMatches(guard core.GuardRule, env GrantEnv) bool {
	return guard.Scope.IsZero() || string(guard.Scope) == env.Scope
}

func passes(guard core.GuardRule, env GrantEnv) bool {
	if guard.CompiledExpr == nil {
		// uncompiled guards never pass, misconfiguration should fail closed
		log.Warn().Str("guard", guard.Name).Msg("guard has no compiled expression")
		return false
	}
	out, err := expr.Run(guard.CompiledExpr, env)
	if err != nil {
		log.Warn().Err(err).Msgf("error evaluating guard expression for guard '%s'", guard.Name)
		return false
	}
	b, ok := out.(bool)
	return ok && b
}
