// Package analyzer implements the two-pass semantic analysis described in
// the core: a TLD pass that registers top-level functions and classes, and
// a code pass that type-checks every statement and expression, annotating
// the AST with resolved types and operator variants.
package analyzer

import (
	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/types"
)

// VariableBinding records everything the compiler needs about a declared
// name once the analyzer has resolved it.
type VariableBinding struct {
	Type         types.Type
	DefiningNode ast.Node
	Exported     bool
	LastUse      ast.Node
	Register     int
	IsGlobal     bool
}

// ClassBinding records a class's member block plus its export state.
type ClassBinding struct {
	Members  *Block
	Defining ast.Node
	Exported bool
}

// Block is a lexical scope: variables and classes live in separate
// namespaces, and lookup walks from innermost to outermost block.
type Block struct {
	Parent    *Block
	Variables map[string]*VariableBinding
	Classes   map[string]*ClassBinding
}

func NewBlock(parent *Block) *Block {
	return &Block{
		Parent:    parent,
		Variables: make(map[string]*VariableBinding),
		Classes:   make(map[string]*ClassBinding),
	}
}

// LookupVariable walks from b outward, returning the first match.
func (b *Block) LookupVariable(name string) (*VariableBinding, bool) {
	for blk := b; blk != nil; blk = blk.Parent {
		if v, ok := blk.Variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupClass walks from b outward, returning the first match.
func (b *Block) LookupClass(name string) (*ClassBinding, bool) {
	for blk := b; blk != nil; blk = blk.Parent {
		if c, ok := blk.Classes[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// DeclareVariable inserts name into b's own namespace; the caller must
// have already checked for redeclaration.
func (b *Block) DeclareVariable(name string, binding *VariableBinding) {
	b.Variables[name] = binding
}

func (b *Block) DeclareClass(name string, binding *ClassBinding) {
	b.Classes[name] = binding
}

// HasOwnVariable reports whether name is declared directly in b, ignoring
// parents; used to detect redeclaration within the same scope.
func (b *Block) HasOwnVariable(name string) bool {
	_, ok := b.Variables[name]
	return ok
}

func (b *Block) HasOwnClass(name string) bool {
	_, ok := b.Classes[name]
	return ok
}
