package types

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Variant is the tag recorded on a cast/unary/binary/access AST node during
// analysis; it selects the exact monomorphized opcode family at compile
// time. The string spelling matches the opcode suffix directly, e.g. a
// binary "+" with variant "INT" compiles to ADD_INT.
type Variant string

//go:embed tables.yaml
var tablesYAML []byte

type castEntry struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Variant string `yaml:"variant"`
}

type unaryEntry struct {
	Op      string `yaml:"op"`
	Operand string `yaml:"operand"`
	Result  string `yaml:"result"`
	Variant string `yaml:"variant"`
}

type operatorTables struct {
	Casts []castEntry  `yaml:"casts"`
	Unary []unaryEntry `yaml:"unary"`
}

var tables operatorTables

func init() {
	if err := yaml.Unmarshal(tablesYAML, &tables); err != nil {
		panic(fmt.Sprintf("types: malformed operator tables: %v", err))
	}
}

func kindFromName(name string) (Kind, bool) {
	switch name {
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "bool":
		return Bool, true
	case "string":
		return String, true
	case "list":
		return List, true
	case "dict":
		return Dict, true
	}
	return 0, false
}

// LookupCast resolves a scalar-level cast; List/Dict entries ignore the
// source's inner type since every cast in the table produces a scalar.
func LookupCast(from, to Kind) (Variant, bool) {
	for _, e := range tables.Casts {
		fk, _ := kindFromName(e.From)
		tk, _ := kindFromName(e.To)
		if fk == from && tk == to {
			return Variant(e.Variant), true
		}
	}
	return "", false
}

// LookupUnary resolves op applied to a scalar operand kind.
func LookupUnary(op string, operand Kind) (result Kind, variant Variant, ok bool) {
	for _, e := range tables.Unary {
		ok2, _ := kindFromName(e.Operand)
		if e.Op == op && ok2 == operand {
			rk, _ := kindFromName(e.Result)
			return rk, Variant(e.Variant), true
		}
	}
	return 0, "", false
}

// BinaryOp names the source-level binary operators the analyzer resolves.
type BinaryOp string

const (
	Add BinaryOp = "+"
	Sub BinaryOp = "-"
	Mul BinaryOp = "*"
	Div BinaryOp = "/"
	Eq  BinaryOp = "=="
	Neq BinaryOp = "!="
	Lt  BinaryOp = "<"
	Lte BinaryOp = "<="
	Gt  BinaryOp = ">"
	Gte BinaryOp = ">="
)

// LookupBinary resolves (op, left, right) to a result type and opcode
// variant per the canonical binary operator contract in the spec. Container
// cases (List/Dict) need the element type threaded through the result, so
// they're handled here rather than in the flat YAML table.
func LookupBinary(op BinaryOp, left, right Type) (result Type, variant Variant, ok bool) {
	same := left.Equal(right)

	switch op {
	case Add:
		switch {
		case same && left.Kind == Int:
			return Simple(Int), "INT", true
		case same && left.Kind == Float:
			return Simple(Float), "FLOAT", true
		case same && left.Kind == String:
			return Simple(String), "STRING", true
		case same && left.Kind == Bool:
			return Simple(Int), "BOOL", true
		case same && left.Kind == List:
			return left.Clone(), "LIST", true
		case same && left.Kind == Dict:
			return left.Clone(), "DICT", true
		}
	case Sub:
		switch {
		case same && left.Kind == Int:
			return Simple(Int), "INT", true
		case same && left.Kind == Float:
			return Simple(Float), "FLOAT", true
		case same && left.Kind == Bool:
			return Simple(Int), "BOOL", true
		}
	case Mul:
		switch {
		case same && left.Kind == Int:
			return Simple(Int), "INT", true
		case same && left.Kind == Float:
			return Simple(Float), "FLOAT", true
		case same && left.Kind == Bool:
			return Simple(Int), "BOOL", true
		case left.Kind == Int && right.Kind == String:
			return Simple(String), "INT_STRING", true
		case left.Kind == String && right.Kind == Int:
			return Simple(String), "STRING_INT", true
		case left.Kind == Int && right.Kind == List:
			return right.Clone(), "INT_LIST", true
		case left.Kind == List && right.Kind == Int:
			return left.Clone(), "LIST_INT", true
		}
	case Div:
		switch {
		case same && left.Kind == Int:
			return Simple(Float), "INT", true
		case same && left.Kind == Float:
			return Simple(Float), "FLOAT", true
		case left.Kind == String && right.Kind == Int:
			return NewList(Simple(String)), "STRING_INT", true
		case left.Kind == List && right.Kind == Int:
			return NewList(left), "LIST_INT", true
		}
	case Eq, Neq:
		if same && (left.Kind == Int || left.Kind == Float || left.Kind == String || left.Kind == Bool || left.Kind == List || left.Kind == Dict) {
			v := map[Kind]Variant{Int: "INT", Float: "FLOAT", String: "STRING", Bool: "BOOL", List: "LIST", Dict: "DICT"}[left.Kind]
			return Simple(Bool), v, true
		}
	case Lt, Lte, Gt, Gte:
		if same && (left.Kind == Int || left.Kind == Float || left.Kind == String || left.Kind == Bool) {
			v := map[Kind]Variant{Int: "INT", Float: "FLOAT", String: "STRING", Bool: "BOOL"}[left.Kind]
			return Simple(Bool), v, true
		}
	}
	return Type{}, "", false
}
