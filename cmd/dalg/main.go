// Command dalg is a small ahead-of-time compiler for the Dalg
// expression language. Given one path it dumps the source's token
// stream; given two it compiles the first into textual LLVM IR written
// to the second.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dalg/internal/driver"
)

var verbose bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dalg <input> [output]",
		Short: "Dalg ahead-of-time compiler",
		Long: "dalg <input> scans <input> and prints its token stream.\n" +
			"dalg <input> <output> compiles <input> and writes LLVM IR to <output>.",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  false,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runTokenDump(args[0])
			}
			return runCompile(args[0], args[1])
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print emitted IR to stderr before writing output")
	return cmd
}

func runTokenDump(input string) error {
	src, err := driver.ReadSource(input)
	if err != nil {
		return err
	}
	dump, warnings := driver.DumpTokens(src)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}
	fmt.Print(dump)
	return nil
}

func runCompile(input, output string) error {
	src, err := driver.ReadSource(input)
	if err != nil {
		return err
	}

	ir, warnings, err := driver.Compile(src, moduleNameFor(input), true)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprint(os.Stderr, ir)
	}
	return driver.WriteOutput(output, ir)
}

// moduleNameFor derives a stable LLVM module name from the input path,
// without the directory portion or extension, matching spec.md §8's
// determinism property for otherwise byte-identical input.
func moduleNameFor(path string) string {
	base := path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			base = base[:i]
			break
		}
	}
	if base == "" {
		return "dalg"
	}
	return base
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}
