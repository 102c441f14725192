package compiler

import "fmt"

// Global is one record of the global variable table. Members maps a
// symbolic member name to its position, for a variable treated as a
// structure: the list is populated at compile time from a `{ ... }`
// initializer and never consulted at runtime.
type Global struct {
	Name        string
	Initialized bool
	Members     []string
}

// Symbols holds the global variable table, the user function table and the
// foreign function table. The parser fills it while resolving names; the
// lowering reads and completes it (entry PCs, initialized flags, member
// lists); the VM reads it to size its foreign function table and to
// dispatch calls.
type Symbols struct {
	Globals []Global

	FunctionNames []string
	// FunctionPCs[i] is the entry PC of FunctionNames[i], filled in when
	// the procedure body is lowered. -1 marks a forward declaration whose
	// body was never seen.
	FunctionPCs []int

	ForeignNames []string
}

func NewSymbols() *Symbols {
	return &Symbols{}
}

// RegisterGlobal returns the index of the named global, creating an
// uninitialized record on first mention.
func (s *Symbols) RegisterGlobal(name string) int {
	for i := range s.Globals {
		if s.Globals[i].Name == name {
			return i
		}
	}
	if len(s.Globals) >= MaxVariables {
		panic(CapacityError{Message: fmt.Sprintf("global variable overflow (max %d)", MaxVariables)})
	}
	s.Globals = append(s.Globals, Global{Name: name})
	return len(s.Globals) - 1
}

// RegisterFunction returns the index of the named user procedure, creating
// a forward declaration on first mention. Callee names must be checked
// against LookupForeign first; a foreign binding takes precedence.
func (s *Symbols) RegisterFunction(name string) int {
	for i, n := range s.FunctionNames {
		if n == name {
			return i
		}
	}
	if len(s.FunctionNames) >= MaxFunctions {
		panic(CapacityError{Message: fmt.Sprintf("function overflow (max %d)", MaxFunctions)})
	}
	s.FunctionNames = append(s.FunctionNames, name)
	s.FunctionPCs = append(s.FunctionPCs, -1)
	return len(s.FunctionNames) - 1
}

// LookupForeign reports the index of a bound foreign function name.
func (s *Symbols) LookupForeign(name string) (int, bool) {
	for i, n := range s.ForeignNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// BindForeignName registers a foreign function name. The embedder must do
// this before parsing so call sites can resolve against it.
func (s *Symbols) BindForeignName(name string) int {
	if len(s.ForeignNames) >= MaxFunctions {
		panic(CapacityError{Message: fmt.Sprintf("foreign function overflow (max %d)", MaxFunctions)})
	}
	s.ForeignNames = append(s.ForeignNames, name)
	return len(s.ForeignNames) - 1
}

// ProcID returns the index of a user procedure by name, or -1 if no such
// procedure was declared.
func (s *Symbols) ProcID(name string) int {
	for i, n := range s.FunctionNames {
		if n == name {
			return i
		}
	}
	return -1
}
