package compiler

import "fmt"

// SemanticError reports a program that lexed and parsed but cannot be
// lowered: use of an uninitialized global, an invalid assignment target,
// a member list outside a global assignment.
type SemanticError struct {
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 SemanticError: %s", e.Message)
}

// CapacityError reports overflow of one of the machine's hard limits:
// program bytes, constants, globals, functions, arguments or members.
type CapacityError struct {
	Message string
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("💥 CapacityError: %s", e.Message)
}

// DeveloperError reports an internal invariant violation, such as the
// lowering encountering an operator the parser should never have accepted.
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}
