package parser

import "fmt"

// SyntaxError reports source text the parser could not make sense of:
// an unexpected token, a missing closing delimiter, a missing `then`.
type SyntaxError struct {
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 SyntaxError: %s", e.Message)
}
