// Package diagnostics is the sink every subsystem reports errors through.
// Each diagnostic belongs to exactly one kind from the error taxonomy and
// carries the source position it was raised at.
package diagnostics

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nuua-io/nuua/internal/token"
)

// Kind is the taxonomy a diagnostic belongs to.
type Kind string

const (
	Lexical    Kind = "lexical"
	Syntactic  Kind = "syntactic"
	Module     Kind = "module"
	Resolution Kind = "resolution"
	Type       Kind = "type"
	Access     Kind = "access"
	Structural Kind = "structural"
	Runtime    Kind = "runtime"
)

// Code-named constants, grouped by taxonomy, following the same per-phase
// numbering scheme used across the rest of the pack's language tooling.
const (
	LexUnterminatedString = "LEX001"
	LexUnexpectedChar     = "LEX002"

	SynUnexpectedToken   = "SYN001"
	SynMissingTerminator = "SYN002"

	ModNotFound     = "MOD001"
	ModCyclicImport = "MOD002"
	ModEmptyFile    = "MOD003"

	ResUndeclaredVariable  = "RES001"
	ResUndeclaredClass     = "RES002"
	ResDuplicateDecl       = "RES003"
	ResImportUndefined     = "RES004"
	ResImportUnexported    = "RES005"

	TypeMismatch       = "TYP001"
	TypeInvalidCast    = "TYP002"
	TypeNoOperator     = "TYP003"
	TypeNotCallable    = "TYP004"
	TypeArgCount       = "TYP005"

	AccBadIndexType    = "ACC001"
	AccNotSliceable    = "ACC002"
	AccPropertyOnNonObj = "ACC003"
	AccUnknownProperty = "ACC004"

	StructMainMissing  = "STR001"
	StructMissingReturn = "STR002"

	RuntimeDivByZero     = "RUN001"
	RuntimeIndexOOB      = "RUN002"
	RuntimeKeyMissing    = "RUN003"
)

// Diagnostic is one entry in the sink.
type Diagnostic struct {
	ID      string
	Kind    Kind
	Code    string
	File    string
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: [%s] %s", d.File, d.Line, d.Column, d.Code, d.Message)
}

// Sink is the append-only diagnostic stream. It is not safe for concurrent
// writes, matching the single-threaded pipeline the core runs under.
type Sink struct {
	entries []Diagnostic
}

func NewSink() *Sink { return &Sink{} }

// Add appends a diagnostic located at tok.
func (s *Sink) Add(kind Kind, code string, tok token.Token, format string, args ...interface{}) *Diagnostic {
	d := Diagnostic{
		ID:      uuid.NewString(),
		Kind:    kind,
		Code:    code,
		File:    tok.File,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: fmt.Sprintf(format, args...),
	}
	s.entries = append(s.entries, d)
	return &s.entries[len(s.entries)-1]
}

// HasErrors reports whether any diagnostic has been recorded.
func (s *Sink) HasErrors() bool { return len(s.entries) > 0 }

// Entries returns every recorded diagnostic in insertion order.
func (s *Sink) Entries() []Diagnostic { return s.entries }

// First returns the earliest recorded diagnostic, if any.
func (s *Sink) First() (Diagnostic, bool) {
	if len(s.entries) == 0 {
		return Diagnostic{}, false
	}
	return s.entries[0], true
}
