package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders one region's instruction stream in a flat, one
// instruction per line, used by the CLI's --opcodes flag.
func (r *Region) Disassemble(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s (%d constants) ==\n", name, len(r.Constants))
	for i, c := range r.Constants {
		fmt.Fprintf(&b, "  const %4d  %s\n", i, c.Format())
	}
	ip := 0
	for ip < len(r.Code) {
		op := Opcode(r.Code[ip])
		kinds := OperandKinds[op]
		operands := r.Code[ip+1 : ip+1+len(kinds)]
		fmt.Fprintf(&b, "%6d  %-12s", ip, op.String())
		for i, k := range kinds {
			switch k {
			case KindRegister:
				fmt.Fprintf(&b, " r%d", operands[i])
			case KindConstant:
				fmt.Fprintf(&b, " c%d", operands[i])
			case KindGlobal:
				fmt.Fprintf(&b, " g%d", operands[i])
			case KindLiteral:
				fmt.Fprintf(&b, " #%d", operands[i])
			case KindProperty:
				fmt.Fprintf(&b, " .%d", operands[i])
			}
		}
		b.WriteByte('\n')
		ip += 1 + len(kinds)
	}
	return b.String()
}

// References renders the region's word-offset to source-position map,
// used by the CLI's --references flag.
func (r *Region) References(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s references ==\n", name)
	for offset, idx := range r.offsetIndex {
		fmt.Fprintf(&b, "%6d  %s:%d:%d\n", offset, r.Files[idx], r.Lines[idx], r.Columns[idx])
	}
	return b.String()
}

// Disassemble renders every memory region of p.
func (p *Program) Disassemble() string {
	var b strings.Builder
	b.WriteString(p.ProgramRegion.Disassemble("program"))
	b.WriteString(p.FunctionsRegion.Disassemble("functions"))
	b.WriteString(p.ClassesRegion.Disassemble("classes"))
	return b.String()
}

// References renders every memory region's reference map.
func (p *Program) References() string {
	var b strings.Builder
	b.WriteString(p.ProgramRegion.References("program"))
	b.WriteString(p.FunctionsRegion.References("functions"))
	b.WriteString(p.ClassesRegion.References("classes"))
	return b.String()
}
