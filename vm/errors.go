package vm

import "fmt"

// RuntimeError reports a fault while executing bytecode: stack overflow or
// underflow, an array index out of bounds, a call to an unbound foreign
// function. The machine is not safe to reuse after one.
type RuntimeError struct {
	Message string
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("💥 RuntimeError: %s", e.Message)
}
