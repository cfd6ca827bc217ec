package ast

import (
	"github.com/nuua-io/nuua/internal/token"
	"github.com/nuua-io/nuua/internal/types"
)

// Declaration binds Name to Initializer's value, or to the zero value of
// Type if no initializer is given. At least one of Type/Initializer must
// be present; the analyzer infers a missing Type from the initializer, and
// without an initializer the compiler loads Type's zero value.
type Declaration struct {
	Token       token.Token
	Name        string
	Type        *types.Type
	Initializer Expression
	Exported    bool
	NoDeclare   bool // true for function parameters already seeded into scope
	Register    int  // assigned by the compiler's register allocator
}

func (d *Declaration) GetToken() token.Token { return d.Token }
func (d *Declaration) Accept(v Visitor)      { v.VisitDeclaration(d) }
func (d *Declaration) statementNode()        {}

// ExpressionStatement wraps an expression evaluated for its side effects.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (e *ExpressionStatement) GetToken() token.Token { return e.Token }
func (e *ExpressionStatement) Accept(v Visitor)      { v.VisitExpressionStatement(e) }
func (e *ExpressionStatement) statementNode()        {}

// Print evaluates Value and writes its canonical text form.
type Print struct {
	Token token.Token
	Value Expression
}

func (p *Print) GetToken() token.Token { return p.Token }
func (p *Print) Accept(v Visitor)      { v.VisitPrint(p) }
func (p *Print) statementNode()        {}

// Return exits the enclosing function, optionally carrying a value.
type Return struct {
	Token token.Token
	Value Expression // nil when the function has no return type
}

func (r *Return) GetToken() token.Token { return r.Token }
func (r *Return) Accept(v Visitor)      { v.VisitReturn(r) }
func (r *Return) statementNode()        {}

// If is if/elif*/else with each branch owning its own nested block.
type IfBranch struct {
	Condition Expression
	Body      []Statement
	Scope     interface{} // *analyzer.Block
}

type If struct {
	Token       token.Token
	Then        IfBranch
	Elifs       []IfBranch
	Else        []Statement // nil when absent
	ElseScope   interface{}
}

func (i *If) GetToken() token.Token { return i.Token }
func (i *If) Accept(v Visitor)      { v.VisitIf(i) }
func (i *If) statementNode()        {}

// While loops while Condition holds.
type While struct {
	Token     token.Token
	Condition Expression
	Body      []Statement
	Scope     interface{}
}

func (w *While) GetToken() token.Token { return w.Token }
func (w *While) Accept(v Visitor)      { v.VisitWhile(w) }
func (w *While) statementNode()        {}

// For iterates over a list, dict or string, binding Variable (and the
// optional Index) in a fresh scope seeded before Body is analyzed.
type For struct {
	Token    token.Token
	Variable string
	Index    string // "" when absent
	Iterator Expression
	Body     []Statement
	Scope    interface{}
}

func (f *For) GetToken() token.Token { return f.Token }
func (f *For) Accept(v Visitor)      { v.VisitFor(f) }
func (f *For) statementNode()        {}

// Function declares a named, typed function. ResolvedBlock is the nested
// scope the analyzer seeds with the parameter bindings.
type Function struct {
	Token         token.Token
	Name          string
	Parameters    []*Declaration
	ReturnType    *types.Type
	Body          []Statement
	ResolvedBlock interface{} // *analyzer.Block
	Exported      bool

	// Compiler bookkeeping: entry offset and frame size in the functions
	// memory region, filled in once compiled.
	EntryOffset int
	FrameSize   int
}

func (f *Function) GetToken() token.Token { return f.Token }
func (f *Function) Accept(v Visitor)      { v.VisitFunction(f) }
func (f *Function) statementNode()        {}

// ClassMember is either a typed field declaration or a method.
type ClassMember struct {
	Field  *Declaration // non-nil for a field
	Method *Function    // non-nil for a method
}

// Class declares a named type with fields and methods.
type Class struct {
	Token         token.Token
	Name          string
	QualifiedName string // "<module-path>:<Name>", set once registered
	Members       []ClassMember
	Block         interface{} // *analyzer.Block owning the class's members
	Exported      bool
}

func (c *Class) GetToken() token.Token { return c.Token }
func (c *Class) Accept(v Visitor)      { v.VisitClass(c) }
func (c *Class) statementNode()        {}

// Use imports bindings from another module. Targets is empty for a wildcard
// import of every exported binding.
type Use struct {
	Token        token.Token
	Targets      []string
	ModulePath   string
	ResolvedPath string      // absolute path, filled in by the analyzer
	ResolvedCode []Statement // the imported module's top-level statements
	ResolvedTop  interface{} // *analyzer.Block of the imported module
}

func (u *Use) GetToken() token.Token { return u.Token }
func (u *Use) Accept(v Visitor)      { v.VisitUse(u) }
func (u *Use) statementNode()        {}

// Export marks Inner as part of the module's public surface.
type Export struct {
	Token token.Token
	Inner Statement
}

func (e *Export) GetToken() token.Token { return e.Token }
func (e *Export) Accept(v Visitor)      { v.VisitExport(e) }
func (e *Export) statementNode()        {}
