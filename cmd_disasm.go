package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"tiny/compiler"
	"tiny/interp"
)

// disasmCmd compiles a source file and prints the bytecode without
// executing it.
type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "Disassemble the bytecode of a tiny source file" }
func (*disasmCmd) Usage() string {
	return `disasm <file>:
  Compile a tiny program and print its bytecode in a human readable form.
`
}
func (d *disasmCmd) SetFlags(f *flag.FlagSet) {}

func (d *disasmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}

	file, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	it := interp.New()
	defer it.Close()

	if err := it.Compile(file); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Print(compiler.Disassemble(it.Program()))
	return subcommands.ExitSuccess
}
