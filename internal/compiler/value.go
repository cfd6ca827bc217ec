package compiler

import "fmt"

// ValueKind tags a Value's payload; it mirrors types.Kind but lives in this
// package since both the compiler's constant pools and the VM's registers
// share exactly this representation.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueString
	ValueList
	ValueDict
	ValueFun
)

// Dict is an insertion-ordered string-keyed map, matching the core's
// requirement that dict iteration and printing preserve insertion order.
type Dict struct {
	Keys   []string
	Values map[string]Value
}

func NewDict() *Dict {
	return &Dict{Values: make(map[string]Value)}
}

func (d *Dict) Set(key string, v Value) {
	if _, exists := d.Values[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Values[key] = v
}

func (d *Dict) Delete(key string) {
	if _, exists := d.Values[key]; !exists {
		return
	}
	delete(d.Values, key)
	for i, k := range d.Keys {
		if k == key {
			d.Keys = append(d.Keys[:i], d.Keys[i+1:]...)
			break
		}
	}
}

func (d *Dict) Clone() *Dict {
	out := NewDict()
	for _, k := range d.Keys {
		out.Set(k, d.Values[k].Clone())
	}
	return out
}

// FunValue is a callable's compiled identity: where its code starts in the
// functions region, and how many registers its frame needs.
type FunValue struct {
	EntryOffset int
	FrameSize   int
	ParamCount  int
	Name        string
}

// Value is the tagged union flowing through constant pools and, at
// runtime, VM registers. Heap-backed variants (String, List, Dict) are
// duplicated on Clone so that overwriting a register never aliases another
// register's payload, matching the core's owning-by-value semantics.
type Value struct {
	Kind   ValueKind
	Int    int64
	Float  float64
	Bool   bool
	Str    string
	List   []Value
	DictV  *Dict
	Fun    FunValue
}

func NoneValue() Value            { return Value{Kind: ValueNone} }
func IntValue(i int64) Value      { return Value{Kind: ValueInt, Int: i} }
func FloatValue(f float64) Value  { return Value{Kind: ValueFloat, Float: f} }
func BoolValue(b bool) Value      { return Value{Kind: ValueBool, Bool: b} }
func StringValue(s string) Value  { return Value{Kind: ValueString, Str: s} }
func ListValue(l []Value) Value   { return Value{Kind: ValueList, List: l} }
func DictValue(d *Dict) Value     { return Value{Kind: ValueDict, DictV: d} }
func FunctionValue(f FunValue) Value { return Value{Kind: ValueFun, Fun: f} }

// Clone duplicates the payload of heap-backed kinds so the copy owns
// independent storage, per the core's value-copy semantics.
func (v Value) Clone() Value {
	switch v.Kind {
	case ValueList:
		out := make([]Value, len(v.List))
		for i, e := range v.List {
			out[i] = e.Clone()
		}
		return Value{Kind: ValueList, List: out}
	case ValueDict:
		return Value{Kind: ValueDict, DictV: v.DictV.Clone()}
	default:
		return v
	}
}

// Equal compares two values of the same kind by value.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueInt:
		return v.Int == o.Int
	case ValueFloat:
		return v.Float == o.Float
	case ValueBool:
		return v.Bool == o.Bool
	case ValueString:
		return v.Str == o.Str
	case ValueList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case ValueDict:
		if len(v.DictV.Keys) != len(o.DictV.Keys) {
			return false
		}
		for _, k := range v.DictV.Keys {
			ov, ok := o.DictV.Values[k]
			if !ok || !v.DictV.Values[k].Equal(ov) {
				return false
			}
		}
		return true
	case ValueFun:
		return v.Fun == o.Fun
	default:
		return true
	}
}

// Format renders v in the canonical print text form.
func (v Value) Format() string {
	switch v.Kind {
	case ValueInt:
		return fmt.Sprintf("%d", v.Int)
	case ValueFloat:
		return formatFloat(v.Float)
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueString:
		return v.Str
	case ValueList:
		s := "["
		for i, e := range v.List {
			if i > 0 {
				s += ", "
			}
			s += e.Format()
		}
		return s + "]"
	case ValueDict:
		s := "{"
		for i, k := range v.DictV.Keys {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%q: %s", k, v.DictV.Values[k].Format())
		}
		return s + "}"
	case ValueFun:
		return "<fun>"
	default:
		return "<none>"
	}
}

// formatFloat renders f using the shortest round-trip decimal, the -1
// precision idiom strconv/fmt share for "shortest representation".
func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
