package ast

import (
	"fmt"
	"strings"
)

// Printer renders a statement tree as an indented outline, one labelled
// node per line, used by the
// CLI's --ast flag. It implements Visitor directly rather than going
// through the analyzer's or compiler's type switches, since dumping needs
// no scope or type context.
type Printer struct {
	out   strings.Builder
	depth int
}

// PrintProgram renders stmts and returns the result.
func PrintProgram(stmts []Statement) string {
	p := &Printer{}
	for _, s := range stmts {
		s.Accept(p)
	}
	return p.out.String()
}

func (p *Printer) line(format string, args ...interface{}) {
	p.out.WriteString(strings.Repeat("  ", p.depth))
	p.out.WriteString(fmt.Sprintf(format, args...))
	p.out.WriteByte('\n')
}

func (p *Printer) nested(stmts []Statement) {
	p.depth++
	for _, s := range stmts {
		s.Accept(p)
	}
	p.depth--
}

func (p *Printer) expr(label string, e Expression) {
	if e == nil {
		return
	}
	p.depth++
	p.line("%s:", label)
	p.depth++
	e.Accept(p)
	p.depth--
	p.depth--
}

func (p *Printer) VisitDeclaration(d *Declaration) {
	p.line("Declaration %s", d.Name)
	p.expr("init", d.Initializer)
}

func (p *Printer) VisitExpressionStatement(e *ExpressionStatement) {
	p.line("ExpressionStatement")
	p.depth++
	e.Expression.Accept(p)
	p.depth--
}

func (p *Printer) VisitPrint(pr *Print) {
	p.line("Print")
	p.depth++
	pr.Value.Accept(p)
	p.depth--
}

func (p *Printer) VisitReturn(r *Return) {
	p.line("Return")
	if r.Value != nil {
		p.depth++
		r.Value.Accept(p)
		p.depth--
	}
}

func (p *Printer) VisitIf(i *If) {
	p.line("If")
	p.depth++
	p.line("then:")
	p.depth++
	i.Then.Condition.Accept(p)
	p.nested(i.Then.Body)
	p.depth--
	for _, br := range i.Elifs {
		p.line("elif:")
		p.depth++
		br.Condition.Accept(p)
		p.nested(br.Body)
		p.depth--
	}
	if i.Else != nil {
		p.line("else:")
		p.nested(i.Else)
	}
	p.depth--
}

func (p *Printer) VisitWhile(w *While) {
	p.line("While")
	p.depth++
	w.Condition.Accept(p)
	p.nested(w.Body)
	p.depth--
}

func (p *Printer) VisitFor(f *For) {
	p.line("For %s/%s", f.Variable, f.Index)
	p.depth++
	f.Iterator.Accept(p)
	p.nested(f.Body)
	p.depth--
}

func (p *Printer) VisitFunction(f *Function) {
	names := make([]string, len(f.Parameters))
	for i, param := range f.Parameters {
		names[i] = param.Name
	}
	p.line("Function %s(%s)", f.Name, strings.Join(names, ", "))
	p.nested(f.Body)
}

func (p *Printer) VisitClass(c *Class) {
	p.line("Class %s", c.Name)
	p.depth++
	for _, m := range c.Members {
		if m.Field != nil {
			p.line("field %s", m.Field.Name)
		} else {
			m.Method.Accept(p)
		}
	}
	p.depth--
}

func (p *Printer) VisitUse(u *Use) {
	p.line("Use %s %v", u.ModulePath, u.Targets)
}

func (p *Printer) VisitExport(e *Export) {
	p.line("Export")
	p.depth++
	e.Inner.Accept(p)
	p.depth--
}

func (p *Printer) VisitInteger(i *Integer) { p.line("Integer %d", i.Value) }
func (p *Printer) VisitFloat(f *Float)     { p.line("Float %g", f.Value) }
func (p *Printer) VisitString(s *String)   { p.line("String %q", s.Value) }
func (p *Printer) VisitBoolean(b *Boolean) { p.line("Boolean %v", b.Value) }

func (p *Printer) VisitList(l *List) {
	p.line("List")
	p.depth++
	for _, e := range l.Elements {
		e.Accept(p)
	}
	p.depth--
}

func (p *Printer) VisitDictionary(d *Dictionary) {
	p.line("Dictionary")
	p.depth++
	for _, k := range d.Keys {
		p.line("%s:", k)
		p.depth++
		d.Values[k].Accept(p)
		p.depth--
	}
	p.depth--
}

func (p *Printer) VisitObject(o *Object) {
	p.line("Object %s", o.ClassName)
	p.depth++
	for _, k := range o.Keys {
		p.line("%s:", k)
		p.depth++
		o.Arguments[k].Accept(p)
		p.depth--
	}
	p.depth--
}

func (p *Printer) VisitGroup(g *Group) {
	p.line("Group")
	p.depth++
	g.Inner.Accept(p)
	p.depth--
}

func (p *Printer) VisitCast(c *Cast) {
	p.line("Cast -> %s", c.Target.String())
	p.depth++
	c.Expr.Accept(p)
	p.depth--
}

func (p *Printer) VisitUnary(u *Unary) {
	p.line("Unary %s", u.Op)
	p.depth++
	u.Right.Accept(p)
	p.depth--
}

func (p *Printer) VisitBinary(b *Binary) {
	p.line("Binary %s", b.Op)
	p.depth++
	b.Left.Accept(p)
	b.Right.Accept(p)
	p.depth--
}

func (p *Printer) VisitLogical(l *Logical) {
	p.line("Logical %s", l.Op)
	p.depth++
	l.Left.Accept(p)
	l.Right.Accept(p)
	p.depth--
}

func (p *Printer) VisitVariable(va *Variable) { p.line("Variable %s", va.Name) }

func (p *Printer) VisitAssign(a *Assign) {
	p.line("Assign")
	p.depth++
	a.Target.Accept(p)
	a.Value.Accept(p)
	p.depth--
}

func (p *Printer) VisitCall(c *Call) {
	p.line("Call")
	p.depth++
	c.Target.Accept(p)
	for _, arg := range c.Arguments {
		arg.Accept(p)
	}
	p.depth--
}

func (p *Printer) VisitAccess(a *Access) {
	p.line("Access")
	p.depth++
	a.Target.Accept(p)
	a.Index.Accept(p)
	p.depth--
}

func (p *Printer) VisitSlice(s *Slice) {
	p.line("Slice")
	p.depth++
	s.Target.Accept(p)
	p.depth--
}

func (p *Printer) VisitRange(r *Range) {
	p.line("Range inclusive=%v", r.Inclusive)
	p.depth++
	r.Start.Accept(p)
	r.End.Accept(p)
	p.depth--
}

func (p *Printer) VisitProperty(pr *Property) {
	p.line("Property .%s", pr.Name)
	p.depth++
	pr.Object.Accept(p)
	p.depth--
}
