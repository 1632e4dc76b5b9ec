// Package driver orchestrates one compilation unit: read source, scan,
// parse, emit IR, verify, optionally optimize, and print. It mirrors the
// teacher's frontend.Parse / frontend.TokenStream split, but without the
// concurrent scanner goroutine the teacher threads through a channel —
// spec.md §5 is explicitly single-threaded, so scanning here runs to
// completion as an ordinary function call before parsing starts.
package driver

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"dalg/internal/codegen"
	"dalg/internal/parser"
	"dalg/internal/scanner"
)

// ReadSource reads the whole of path into memory.
func ReadSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read source code: %s", err)
	}
	return string(b), nil
}

// DumpTokens scans src and renders its token stream in the tabular
// shape the teacher's frontend.TokenStream produces: one
// "lexeme\tkind\tposition" line per token, EOF included, columns
// aligned with a tabwriter. Scanner warnings do not stop the dump —
// spec.md §4.1 rule 4 treats them as non-fatal.
func DumpTokens(src string) (string, []string) {
	tokens, warnings := scanner.New(src).Scan()

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 10, 20, 2, ' ', 0)
	fmt.Fprintf(tw, "Value\tType\tPosition\n")
	for _, t := range tokens {
		fmt.Fprintf(tw, "%s\n", t)
	}
	tw.Flush()
	return sb.String(), warnings
}

// Compile scans, parses, and emits src into textual LLVM IR named
// moduleName, running the verifier and, if optimize is true, the
// default O3 pipeline before printing. Each call opens and disposes its
// own codegen.Emitter, so compiling a second source in the same process
// never observes the first's function declarations (spec.md §5).
func Compile(src, moduleName string, optimize bool) (string, []string, error) {
	tokens, warnings := scanner.New(src).Scan()

	prog, err := parser.Parse(tokens)
	if err != nil {
		return "", warnings, err
	}

	e := codegen.New(moduleName)
	defer e.Dispose()

	if err := prog.Emit(e); err != nil {
		return "", warnings, err
	}
	if err := e.Verify(); err != nil {
		return "", warnings, err
	}
	if optimize {
		if err := e.Optimize(); err != nil {
			return "", warnings, err
		}
	}
	return e.String(), warnings, nil
}

// WriteOutput writes ir to path, truncating or creating it as needed.
func WriteOutput(path, ir string) error {
	return os.WriteFile(path, []byte(ir), 0644)
}
