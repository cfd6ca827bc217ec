// Package types implements the Nuua type model: a small tagged union with
// structural equality, plus the cast/unary/binary operator tables the
// analyzer consults to pick a monomorphized opcode variant.
package types

import "fmt"

// Kind discriminates the variant stored in a Type value.
type Kind uint8

const (
	Int Kind = iota
	Float
	Bool
	String
	List
	Dict
	Fun
	Object
	NoType
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case List:
		return "list"
	case Dict:
		return "dict"
	case Fun:
		return "fun"
	case Object:
		return "object"
	default:
		return "notype"
	}
}

// Type is a cheap-to-clone tagged variant describing one Nuua value shape.
// List and Dict own an Inner type; Fun owns Parameters and an optional
// Return; Object carries only the interned class name.
type Type struct {
	Kind       Kind
	Inner      *Type
	Parameters []Type
	Return     *Type
	ClassName  string
}

// NoTypeValue is the placeholder type for expressions without a value
// (e.g. a call to a function with no return, used only as a statement).
var NoTypeValue = Type{Kind: NoType}

func Simple(k Kind) Type { return Type{Kind: k} }

func NewList(inner Type) Type {
	i := inner.Clone()
	return Type{Kind: List, Inner: &i}
}

func NewDict(inner Type) Type {
	i := inner.Clone()
	return Type{Kind: Dict, Inner: &i}
}

func NewObject(className string) Type {
	return Type{Kind: Object, ClassName: className}
}

func NewFun(parameters []Type, ret *Type) Type {
	t := Type{Kind: Fun}
	for _, p := range parameters {
		t.Parameters = append(t.Parameters, p.Clone())
	}
	if ret != nil {
		r := ret.Clone()
		t.Return = &r
	}
	return t
}

// Clone produces an independent copy; Type owns its inner type tree.
func (t Type) Clone() Type {
	out := Type{Kind: t.Kind, ClassName: t.ClassName}
	if t.Inner != nil {
		inner := t.Inner.Clone()
		out.Inner = &inner
	}
	if t.Return != nil {
		ret := t.Return.Clone()
		out.Return = &ret
	}
	for _, p := range t.Parameters {
		out.Parameters = append(out.Parameters, p.Clone())
	}
	return out
}

// Equal is structural equality, recursive on inner types. Object equality
// compares only the class name.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case List, Dict:
		return t.Inner.Equal(*o.Inner)
	case Object:
		return t.ClassName == o.ClassName
	case Fun:
		if len(t.Parameters) != len(o.Parameters) {
			return false
		}
		for i := range t.Parameters {
			if !t.Parameters[i].Equal(o.Parameters[i]) {
				return false
			}
		}
		if (t.Return == nil) != (o.Return == nil) {
			return false
		}
		if t.Return != nil && !t.Return.Equal(*o.Return) {
			return false
		}
		return true
	default:
		return true
	}
}

func (t Type) IsNoType() bool { return t.Kind == NoType }

// String renders the type for diagnostics and dumps, e.g.
// "list[dict[string]]" or "fun(int,string):bool"; source code spells
// list and dict types as [T] and {T}.
func (t Type) String() string {
	switch t.Kind {
	case List:
		return fmt.Sprintf("list[%s]", t.Inner.String())
	case Dict:
		return fmt.Sprintf("dict[%s]", t.Inner.String())
	case Object:
		return t.ClassName
	case Fun:
		s := "fun("
		for i, p := range t.Parameters {
			if i > 0 {
				s += ","
			}
			s += p.String()
		}
		s += ")"
		if t.Return != nil {
			s += ":" + t.Return.String()
		}
		return s
	default:
		return t.Kind.String()
	}
}
