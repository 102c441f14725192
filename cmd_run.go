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

// runCmd implements the run command
type runCmd struct {
	disassemble bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute tiny code from a source file" }
func (*runCmd) Usage() string {
	return `run [-disassemble] <file>:
  Compile and execute a tiny program.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.disassemble, "disassemble", false, "print the disassembled program before running it")
	f.BoolVar(&r.disassemble, "di", false, "Shorthand for disassemble.")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	file, err := os.Open(filename)
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
	if r.disassemble {
		fmt.Print(compiler.Disassemble(it.Program()))
	}
	if err := it.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
