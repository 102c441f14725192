// Package interp is the embedding facade over the whole pipeline: it wires
// the lexer, parser, compiler and machine together so a driver (or a host
// program embedding tiny) only deals with one object.
package interp

import (
	"fmt"
	"io"

	"tiny/compiler"
	"tiny/lexer"
	"tiny/parser"
	"tiny/vm"
)

type foreignBinding struct {
	name string
	fn   vm.ForeignFunc
}

// Interp owns one complete interpreter instance: the shared constant pool
// and symbol tables, the compiled program, and the machine executing it.
// Instances do not share any state; create a fresh one per program.
type Interp struct {
	pool     *compiler.ConstantPool
	syms     *compiler.Symbols
	foreigns []foreignBinding

	prog    *compiler.Program
	machine *vm.Machine

	in  io.Reader
	out io.Writer
}

// New resets all interpreter state: empty tables, no program, and a
// collector back at its initial threshold once a machine exists.
func New() *Interp {
	return &Interp{
		pool: compiler.NewConstantPool(),
		syms: compiler.NewSymbols(),
	}
}

// BindForeign registers a foreign function. It must be called before
// Compile so the parser can resolve the name; a binding shadows any user
// procedure with the same name.
func (i *Interp) BindForeign(name string, fn vm.ForeignFunc) error {
	if _, exists := i.syms.LookupForeign(name); exists {
		return fmt.Errorf("foreign function '%s' is already bound", name)
	}
	if i.prog != nil {
		return fmt.Errorf("cannot bind foreign function '%s' after compilation", name)
	}
	i.syms.BindForeignName(name)
	i.foreigns = append(i.foreigns, foreignBinding{name: name, fn: fn})
	return nil
}

// SetInput redirects the program's line-oriented input source. Effective
// whether called before or after Compile.
func (i *Interp) SetInput(r io.Reader) {
	i.in = r
	if i.machine != nil {
		i.machine.SetInput(r)
	}
}

// SetOutput redirects the program's text sink.
func (i *Interp) SetOutput(w io.Writer) {
	i.out = w
	if i.machine != nil {
		i.machine.SetOutput(w)
	}
}

// Compile reads the whole source stream, parses and lowers it, and builds
// the machine that will execute it. The program ends with HALT.
func (i *Interp) Compile(source io.Reader) error {
	data, err := io.ReadAll(source)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	lex := lexer.New(string(data))
	tokens, err := lex.Scan()
	if err != nil {
		return err
	}

	p := parser.Make(tokens, i.pool, i.syms)
	body, err := p.Parse()
	if err != nil {
		return err
	}

	c := compiler.New(i.pool, i.syms)
	prog, err := c.Compile(body)
	if err != nil {
		return err
	}

	machine := vm.New(prog)
	if i.in != nil {
		machine.SetInput(i.in)
	}
	if i.out != nil {
		machine.SetOutput(i.out)
	}
	for _, binding := range i.foreigns {
		if err := machine.BindForeign(binding.name, binding.fn); err != nil {
			return err
		}
	}

	i.prog = prog
	i.machine = machine
	return nil
}

// Program returns the compiled program, or nil before Compile.
func (i *Interp) Program() *compiler.Program {
	return i.prog
}

// Machine returns the executing machine, for value construction and stack
// access from foreign functions and embedders. Nil before Compile.
func (i *Interp) Machine() *vm.Machine {
	return i.machine
}

// Run executes the compiled program from PC 0.
func (i *Interp) Run() error {
	if i.machine == nil {
		return fmt.Errorf("no compiled program to run")
	}
	return i.machine.Run()
}

// ProcID resolves a user procedure name to the id CallProc takes, or -1.
func (i *Interp) ProcID(name string) int {
	return i.syms.ProcID(name)
}

// CallProc invokes a user procedure from the embedder. The arguments must
// already have been pushed, leftmost first, through Machine().Push.
func (i *Interp) CallProc(id int, nargs int) error {
	if i.machine == nil {
		return fmt.Errorf("no compiled program to run")
	}
	return i.machine.CallProc(id, nargs)
}

// Close releases the interpreter: all roots are dropped and a final
// collection runs, so Native release callbacks fire.
func (i *Interp) Close() {
	if i.machine != nil {
		i.machine.Shutdown()
		i.machine = nil
	}
}
