package ast

import (
	"github.com/nuua-io/nuua/internal/token"
	"github.com/nuua-io/nuua/internal/types"
)

type Integer struct {
	exprBase
	Token token.Token
	Value int64
}

func (i *Integer) GetToken() token.Token { return i.Token }
func (i *Integer) Accept(v Visitor)      { v.VisitInteger(i) }

type Float struct {
	exprBase
	Token token.Token
	Value float64
}

func (f *Float) GetToken() token.Token { return f.Token }
func (f *Float) Accept(v Visitor)      { v.VisitFloat(f) }

type String struct {
	exprBase
	Token token.Token
	Value string
}

func (s *String) GetToken() token.Token { return s.Token }
func (s *String) Accept(v Visitor)      { v.VisitString(s) }

type Boolean struct {
	exprBase
	Token token.Token
	Value bool
}

func (b *Boolean) GetToken() token.Token { return b.Token }
func (b *Boolean) Accept(v Visitor)      { v.VisitBoolean(b) }

// List is a literal list; every element must share element 0's type.
type List struct {
	exprBase
	Token    token.Token
	Elements []Expression
}

func (l *List) GetToken() token.Token { return l.Token }
func (l *List) Accept(v Visitor)      { v.VisitList(l) }

// Dictionary is a literal dict; Keys preserves source (insertion) order.
type Dictionary struct {
	exprBase
	Token  token.Token
	Keys   []string
	Values map[string]Expression
}

func (d *Dictionary) GetToken() token.Token { return d.Token }
func (d *Dictionary) Accept(v Visitor)      { v.VisitDictionary(d) }

// Object constructs an instance of ClassName with a field=>value map.
type Object struct {
	exprBase
	Token     token.Token
	ClassName string
	Keys      []string
	Arguments map[string]Expression
}

func (o *Object) GetToken() token.Token { return o.Token }
func (o *Object) Accept(v Visitor)      { v.VisitObject(o) }

type Group struct {
	exprBase
	Token token.Token
	Inner Expression
}

func (g *Group) GetToken() token.Token { return g.Token }
func (g *Group) Accept(v Visitor)      { v.VisitGroup(g) }

// Cast converts Expr's value to Target, using Variant to pick the opcode.
type Cast struct {
	exprBase
	Token   token.Token
	Expr    Expression
	Target  types.Type
	Variant types.Variant
}

func (c *Cast) GetToken() token.Token { return c.Token }
func (c *Cast) Accept(v Visitor)      { v.VisitCast(c) }

type Unary struct {
	exprBase
	Token   token.Token
	Op      string
	Right   Expression
	Variant types.Variant
}

func (u *Unary) GetToken() token.Token { return u.Token }
func (u *Unary) Accept(v Visitor)      { v.VisitUnary(u) }

type Binary struct {
	exprBase
	Token   token.Token
	Left    Expression
	Op      types.BinaryOp
	Right   Expression
	Variant types.Variant
}

func (b *Binary) GetToken() token.Token { return b.Token }
func (b *Binary) Accept(v Visitor)      { v.VisitBinary(b) }

// Logical is short-circuiting `and` / `or` over two Bool operands.
type Logical struct {
	exprBase
	Token token.Token
	Left  Expression
	Op    string // "and" | "or"
	Right Expression
}

func (l *Logical) GetToken() token.Token { return l.Token }
func (l *Logical) Accept(v Visitor)      { v.VisitLogical(l) }

type Variable struct {
	exprBase
	Token    token.Token
	Name     string
	Register int // resolved register/global slot, filled in by the compiler
	IsGlobal bool
}

func (va *Variable) GetToken() token.Token { return va.Token }
func (va *Variable) Accept(v Visitor)      { v.VisitVariable(va) }

// Assign stores Value into Target, which is either a Variable, an Access
// or a Property. IsAccess mirrors the target's syntactic shape so the
// compiler can choose the right store opcode without re-inspecting Target.
type Assign struct {
	exprBase
	Token    token.Token
	Target   Expression
	Value    Expression
	IsAccess bool
}

func (a *Assign) GetToken() token.Token { return a.Token }
func (a *Assign) Accept(v Visitor)      { v.VisitAssign(a) }

// Call invokes Target with Arguments. HasReturn mirrors whether the callee
// declares a return type; a call without one may only be used as a
// statement.
type Call struct {
	exprBase
	Token     token.Token
	Target    Expression
	Arguments []Expression
	HasReturn bool
}

func (c *Call) GetToken() token.Token { return c.Token }
func (c *Call) Accept(v Visitor)      { v.VisitCall(c) }

// AccessKind records which container flavor an Access targets, since the
// compiler needs it to pick LGET/DGET/SGET.
type AccessKind int

const (
	AccessString AccessKind = iota
	AccessList
	AccessDict
)

type Access struct {
	exprBase
	Token  token.Token
	Target Expression
	Index  Expression
	Kind   AccessKind
}

func (a *Access) GetToken() token.Token { return a.Token }
func (a *Access) Accept(v Visitor)      { v.VisitAccess(a) }

// Slice extracts Target[Start:End:Step]; any bound may be nil.
type Slice struct {
	exprBase
	Token  token.Token
	Target Expression
	Start  Expression
	End    Expression
	Step   Expression
	IsList bool // false means the target is a String
}

func (s *Slice) GetToken() token.Token { return s.Token }
func (s *Slice) Accept(v Visitor)      { v.VisitSlice(s) }

// Range builds a List(Int) from Start to End, End excluded unless Inclusive.
type Range struct {
	exprBase
	Token     token.Token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (r *Range) GetToken() token.Token { return r.Token }
func (r *Range) Accept(v Visitor)      { v.VisitRange(r) }

// Property accesses a field by name on an Object-typed receiver.
type Property struct {
	exprBase
	Token  token.Token
	Object Expression
	Name   string
}

func (p *Property) GetToken() token.Token { return p.Token }
func (p *Property) Accept(v Visitor)      { v.VisitProperty(p) }
