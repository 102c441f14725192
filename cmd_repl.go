package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"tiny/interp"
)

// replCmd implements the REPL command
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start interactive REPL session. Each line is compiled and run as a
  complete program in a fresh interpreter.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to tiny!")
	fmt.Println("Type a program on one line, 'exit' to leave.")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
		return subcommands.ExitFailure
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
			return subcommands.ExitFailure
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" {
			return subcommands.ExitSuccess
		}

		it := interp.New()
		if err := it.Compile(strings.NewReader(line)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			it.Close()
			continue
		}
		if err := it.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		it.Close()
	}
}
