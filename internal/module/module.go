// Package module resolves `use` targets to parsed, cached module ASTs,
// keyed by canonical absolute path. Resolving a module only ever parses
// that one file; it never recurses into the files it `use`s, so it has no
// way to observe a cycle. Cyclic import detection happens one layer up, in
// internal/analyzer, which walks the module graph by recursing through
// `use` as it analyzes.
package module

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/lexer"
	"github.com/nuua-io/nuua/internal/parser"
	"github.com/nuua-io/nuua/internal/token"
)

// SourceExt is Nuua's canonical source file extension.
const SourceExt = ".nu"

// Module is one parsed, resolved compilation unit. TopBlock is set by the
// analyzer once the module's TLD pass has run; it is typed interface{}
// here to avoid an analyzer<->module import cycle, the same trick the
// AST package uses for Use.ResolvedTop and Block.Scope.
type Module struct {
	Path     string
	Code     []ast.Statement
	TopBlock interface{}
}

// Resolver owns the process-wide module cache.
type Resolver struct {
	StdlibDir string
	sink      *diagnostics.Sink
	cache     map[string]*Module
}

func NewResolver(stdlibDir string, sink *diagnostics.Sink) *Resolver {
	return &Resolver{
		StdlibDir: stdlibDir,
		sink:      sink,
		cache:     make(map[string]*Module),
	}
}

// ResolveRoot parses path as the program's entry module.
func (r *Resolver) ResolveRoot(path string) (*Module, bool) {
	abs, ok := r.locate(path, "")
	if !ok {
		r.sink.Add(diagnostics.Module, diagnostics.ModNotFound, token.Token{File: path},
			"module not found: %s", path)
		return nil, false
	}
	return r.resolveAbs(abs, token.Token{File: path})
}

// Resolve resolves modulePath as referenced from a `use` inside fromFile,
// at the given use-site token (for diagnostics).
func (r *Resolver) Resolve(modulePath, fromFile string, at token.Token) (*Module, bool) {
	abs, ok := r.locate(modulePath, fromFile)
	if !ok {
		r.sink.Add(diagnostics.Module, diagnostics.ModNotFound, at,
			"module not found: %s", modulePath)
		return nil, false
	}
	return r.resolveAbs(abs, at)
}

func (r *Resolver) resolveAbs(abs string, at token.Token) (*Module, bool) {
	if m, ok := r.cache[abs]; ok {
		return m, true
	}

	contents, err := os.ReadFile(abs)
	if err != nil {
		r.sink.Add(diagnostics.Module, diagnostics.ModNotFound, at, "cannot read module %s: %v", abs, err)
		return nil, false
	}
	if len(strings.TrimSpace(string(contents))) == 0 {
		r.sink.Add(diagnostics.Module, diagnostics.ModEmptyFile, at, "module %s is empty", abs)
		return nil, false
	}

	lx := lexer.New(abs, string(contents))
	toks := lx.Tokens()
	ps := parser.New(toks, r.sink)
	stmts := ps.ParseProgram()

	m := &Module{Path: abs, Code: stmts}
	r.cache[abs] = m

	return m, true
}

// locate applies the resolution order from the core: relative to the
// referencing file's directory first, then the stdlib directory.
func (r *Resolver) locate(modulePath, fromFile string) (string, bool) {
	withExt := modulePath
	if !strings.HasSuffix(withExt, SourceExt) {
		withExt += SourceExt
	}

	candidates := []string{}
	if fromFile != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(fromFile), withExt))
	} else {
		candidates = append(candidates, withExt)
	}
	if r.StdlibDir != "" {
		candidates = append(candidates, filepath.Join(r.StdlibDir, withExt))
	}

	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return abs, true
		}
	}
	return "", false
}
