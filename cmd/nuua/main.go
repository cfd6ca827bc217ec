// Command nuua is the reference CLI for the Nuua toolchain: it lexes,
// parses, resolves modules, runs semantic analysis, compiles to the
// register-based opcode form and executes it, draining the shared
// diagnostic sink to standard error on any failure.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/nuua-io/nuua/internal/analyzer"
	"github.com/nuua-io/nuua/internal/ast"
	"github.com/nuua-io/nuua/internal/compiler"
	"github.com/nuua-io/nuua/internal/diagnostics"
	"github.com/nuua-io/nuua/internal/lexer"
	"github.com/nuua-io/nuua/internal/module"
	"github.com/nuua-io/nuua/internal/token"
	"github.com/nuua-io/nuua/internal/vm"
)

const usage = "usage: nuua <path> [--tokens] [--ast] [--opcodes] [--references]"

type flags struct {
	path       string
	tokens     bool
	ast        bool
	opcodes    bool
	references bool
	args       []string
}

func parseFlags(argv []string) (flags, bool) {
	var f flags
	for i, a := range argv {
		switch a {
		case "--tokens":
			f.tokens = true
		case "--ast":
			f.ast = true
		case "--opcodes":
			f.opcodes = true
		case "--references":
			f.references = true
		default:
			if len(a) > 0 && a[0] == '-' {
				return f, false
			}
			if f.path == "" {
				f.path = a
				continue
			}
			f.args = append(f.args, argv[i:]...)
			return f, true
		}
	}
	return f, f.path != ""
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	f, ok := parseFlags(argv)
	if !ok {
		fmt.Fprintln(os.Stderr, usage)
		return 64
	}

	sink := diagnostics.NewSink()
	stdlibDir := os.Getenv("NUUA_STDLIB")
	resolver := module.NewResolver(stdlibDir, sink)

	mod, ok := resolver.ResolveRoot(f.path)
	if !ok {
		return drain(sink)
	}

	if f.tokens {
		contents, err := os.ReadFile(mod.Path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		lx := lexer.New(mod.Path, string(contents))
		for _, tok := range lx.Tokens() {
			fmt.Printf("%s:%d:%d  %s\n", tok.File, tok.Line, tok.Column, tok.String())
		}
	}
	if sink.HasErrors() {
		return drain(sink)
	}

	if f.ast {
		fmt.Print(ast.PrintProgram(mod.Code))
	}

	az := analyzer.New(sink, resolver)
	top := az.AnalyzeModule(mod)
	entryTok := token.Token{File: mod.Path, Line: 1, Column: 1}
	az.ValidateMain(top, entryTok)
	if sink.HasErrors() {
		return drain(sink)
	}

	comp := compiler.New(sink)
	program := comp.CompileModule(mod, top)
	if sink.HasErrors() {
		return drain(sink)
	}

	if f.opcodes {
		fmt.Print(program.Disassemble())
	}
	if f.references {
		fmt.Print(program.References())
	}

	machine := vm.New(sink, program)
	exitCode := machine.Run(f.args)
	if sink.HasErrors() {
		return drain(sink)
	}
	return exitCode
}

// drain writes every recorded diagnostic to standard error in insertion
// order and returns the process exit code for a diagnostic-driven failure.
// Diagnostic codes are highlighted only when stderr is an interactive
// terminal (isatty or a Cygwin terminal).
func drain(sink *diagnostics.Sink) int {
	code := color.New(color.FgRed, color.Bold).SprintFunc()
	colorize := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	for _, d := range sink.Entries() {
		if colorize {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s %s\n", d.File, d.Line, d.Column, code("["+d.Code+"]"), d.Message)
		} else {
			fmt.Fprintln(os.Stderr, d.String())
		}
	}
	return 1
}
