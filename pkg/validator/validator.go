// Package validator runs structural checks on a parsed AST before it is
// handed to pkg/transform. Today that gate is a pass-through: it exists so
// a later revision can reject semantically invalid programs (e.g. `<-`
// outside a function body) without disturbing the rest of the pipeline's
// contract.
package validator

import "github.com/blg-lang/blg/pkg/ast"

// Validate always succeeds for now; it returns a non-nil error only once
// this gate grows real checks.
func Validate(prog *ast.Program) error {
	_ = prog
	return nil
}
