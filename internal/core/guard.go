package core

import "github.com/expr-lang/expr/vm"

// GuardRule is an optional policy constraint evaluated before a grant is
// accepted. All guards matching the request's scope must pass.
type GuardRule struct {
	// Name is a human-readable identifier for logs/debugging.
	Name string `yaml:"name" json:"name"`

	// Description explains the intent of the guard.
	Description string `yaml:"description" json:"description"`

	// Scope restricts the guard to one scope. Empty matches every scope.
	Scope Identity `yaml:"scope" json:"scope"`

	// Expr is an expression over {owner, delegate, scope, units} that
	// must evaluate to true for the grant to proceed.
	Expr string `yaml:"expr" json:"expr"`

	// CompiledExpr holds the pre-compiled form of Expr.
	CompiledExpr *vm.Program `yaml:"-" json:"-"`
}

// GuardResult records the outcome of evaluating one guard against a
// grant request. Used by the explain surface.
type GuardResult struct {
	Rule    string `json:"rule"`
	Skipped bool   `json:"skipped,omitempty"` // scope did not match
	Passed  bool   `json:"passed"`
	Reason  string `json:"reason,omitempty"`
}
