// Package ast defines the node set the parser produces and the analyzer,
// compiler and virtual machine consume. Every node carries its source
// position so later stages can report accurate diagnostics.
package ast

import (
	"github.com/nuua-io/nuua/internal/token"
	"github.com/nuua-io/nuua/internal/types"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	GetToken() token.Token
	Accept(v Visitor)
}

// Statement is a Node that can appear at statement position.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that produces a value (or NoType).
type Expression interface {
	Node
	expressionNode()
	ResolvedType() types.Type
	SetResolvedType(types.Type)
}

// exprBase centralizes the resolved-type bookkeeping shared by expressions.
type exprBase struct {
	Type types.Type
}

func (e *exprBase) ResolvedType() types.Type        { return e.Type }
func (e *exprBase) SetResolvedType(t types.Type)     { e.Type = t }
func (e *exprBase) expressionNode()                  {}

// Visitor dispatches over every concrete node kind. The --ast Printer
// implements it; the analyzer and the compiler dispatch with type switches.
type Visitor interface {
	VisitDeclaration(*Declaration)
	VisitExpressionStatement(*ExpressionStatement)
	VisitPrint(*Print)
	VisitReturn(*Return)
	VisitIf(*If)
	VisitWhile(*While)
	VisitFor(*For)
	VisitFunction(*Function)
	VisitClass(*Class)
	VisitUse(*Use)
	VisitExport(*Export)

	VisitInteger(*Integer)
	VisitFloat(*Float)
	VisitString(*String)
	VisitBoolean(*Boolean)
	VisitList(*List)
	VisitDictionary(*Dictionary)
	VisitObject(*Object)
	VisitGroup(*Group)
	VisitCast(*Cast)
	VisitUnary(*Unary)
	VisitBinary(*Binary)
	VisitLogical(*Logical)
	VisitVariable(*Variable)
	VisitAssign(*Assign)
	VisitCall(*Call)
	VisitAccess(*Access)
	VisitSlice(*Slice)
	VisitRange(*Range)
	VisitProperty(*Property)
}

// Block is a lexical list of statements sharing a nested scope. Nothing
// sets Scope: the analyzer attaches scopes to the If, While, For and
// Function nodes directly.
type Block struct {
	Statements []Statement
	Scope      interface{} // *analyzer.Block, set during analysis
}
