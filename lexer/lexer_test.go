package lexer

import (
	"reflect"
	"strings"
	"testing"
	"tiny/token"
)

// typesOf projects a token slice onto its token types, so the expected
// values do not have to spell out line/column positions.
func typesOf(tokens []token.Token) []token.TokenType {
	types := make([]token.TokenType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.TokenType)
	}
	return types
}

func scanTypes(t *testing.T, input string) []token.TokenType {
	t.Helper()
	tokens, err := New(input).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	return typesOf(tokens)
}

func TestOperatorsSuccess(t *testing.T) {
	expected := []token.TokenType{
		token.EQUAL_EQUAL,
		token.DIV,
		token.ASSIGN,
		token.MULT,
		token.ADD,
		token.LARGER,
		token.SUB,
		token.LESS,
		token.NOT_EQUAL,
		token.LESS_EQUAL,
		token.LARGER_EQUAL,
		token.MOD,
		token.BITAND,
		token.BITOR,
		token.EOF,
	}
	got := scanTypes(t, "== / = * + > - < != <= >= % & |")
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Scan() = %v, want %v", got, expected)
	}
}

func TestDelimiters(t *testing.T) {
	expected := []token.TokenType{
		token.TokenType("("),
		token.TokenType(")"),
		token.TokenType("["),
		token.TokenType("]"),
		token.TokenType("{"),
		token.TokenType("}"),
		token.TokenType(","),
		token.TokenType(";"),
		token.EOF,
	}
	got := scanTypes(t, "()[]{},;")
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Scan() = %v, want %v", got, expected)
	}
}

func TestKeywords(t *testing.T) {
	expected := []token.TokenType{
		token.BEGIN, token.END, token.READ, token.WRITE, token.PROC,
		token.IF, token.RETURN, token.WHILE, token.THEN, token.LOCAL,
		token.EOF,
	}
	got := scanTypes(t, "begin end read write proc if return while then local")
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Scan() = %v, want %v", got, expected)
	}
}

func TestIdentifiers(t *testing.T) {
	tokens, err := New("foo Bar x1 a_b").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	lexemes := []string{"foo", "Bar", "x1", "a_b"}
	for i, lexeme := range lexemes {
		if tokens[i].TokenType != token.IDENTIFIER {
			t.Errorf("token %d type = %s, want IDENTIFIER", i, tokens[i].TokenType)
		}
		if tokens[i].Lexeme != lexeme {
			t.Errorf("token %d lexeme = %q, want %q", i, tokens[i].Lexeme, lexeme)
		}
	}
}

func TestTrueFalseAreNumbers(t *testing.T) {
	tokens, err := New("true false").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].TokenType != token.NUMBER || tokens[0].Literal != float64(1) {
		t.Errorf("'true' = %v, want NUMBER token with value 1", tokens[0])
	}
	if tokens[1].TokenType != token.NUMBER || tokens[1].Literal != float64(0) {
		t.Errorf("'false' = %v, want NUMBER token with value 0", tokens[1])
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{input: "42", want: 42},
		{input: "3.14", want: 3.14},
		{input: "0", want: 0},
		{input: "10000", want: 10000},
	}
	for _, tt := range tests {
		tokens, err := New(tt.input).Scan()
		if err != nil {
			t.Fatalf("Scan(%q) raised an error: %v", tt.input, err)
		}
		if tokens[0].TokenType != token.NUMBER || tokens[0].Literal != tt.want {
			t.Errorf("Scan(%q) = %v, want NUMBER %v", tt.input, tokens[0], tt.want)
		}
	}
}

func TestInvalidNumbers(t *testing.T) {
	for _, input := range []string{"1.2.3", "1."} {
		_, err := New(input).Scan()
		if err == nil {
			t.Errorf("Scan(%q) expected an error, got none", input)
		}
	}
}

func TestStringLiteral(t *testing.T) {
	tokens, err := New(`"hello world"`).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].TokenType != token.STRING || tokens[0].Literal != "hello world" {
		t.Errorf("Scan() = %v, want STRING \"hello world\"", tokens[0])
	}
}

func TestEmptyStringLiteral(t *testing.T) {
	tokens, err := New(`""`).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].TokenType != token.STRING || tokens[0].Literal != "" {
		t.Errorf("Scan() = %v, want empty STRING", tokens[0])
	}
}

func TestUnclosedStringLiteral(t *testing.T) {
	_, err := New(`"never closed`).Scan()
	if err == nil {
		t.Errorf("Scan() expected an error for an unclosed string literal")
	}
}

func TestNoEscapeProcessing(t *testing.T) {
	tokens, err := New(`"a\nb"`).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].Literal != `a\nb` {
		t.Errorf("Scan() = %q, escapes must pass through verbatim", tokens[0].Literal)
	}
}

func TestLocalRef(t *testing.T) {
	tokens, err := New("$foo + $n").Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if tokens[0].TokenType != token.LOCALREF || tokens[0].Literal != "foo" {
		t.Errorf("Scan() = %v, want LOCALREF foo", tokens[0])
	}
	if tokens[2].TokenType != token.LOCALREF || tokens[2].Literal != "n" {
		t.Errorf("Scan() = %v, want LOCALREF n", tokens[2])
	}
}

func TestBareSigilIsAnError(t *testing.T) {
	_, err := New("$ x").Scan()
	if err == nil {
		t.Errorf("Scan() expected an error for '$' without an identifier")
	}
}

func TestComments(t *testing.T) {
	input := "# a comment\n1 # trailing\n# last"
	got := scanTypes(t, input)
	expected := []token.TokenType{token.NUMBER, token.EOF}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Scan() = %v, want %v", got, expected)
	}
}

func TestEmptyInput(t *testing.T) {
	got := scanTypes(t, "")
	if !reflect.DeepEqual(got, []token.TokenType{token.EOF}) {
		t.Errorf("Scan() = %v, want just EOF", got)
	}
}

func TestTokenTooLong(t *testing.T) {
	_, err := New(strings.Repeat("a", token.MaxLen+10)).Scan()
	if err == nil {
		t.Errorf("Scan() expected an error for an over-long identifier")
	}
}

// Re-tokenizing the same stream must produce the same token sequence;
// lexing is a function of the input bytes only.
func TestRetokenizeIsDeterministic(t *testing.T) {
	input := `x = 10 while x > 0 write x end x = x - 1 end # done`
	first, err := New(input).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	second, err := New(input).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-tokenizing produced a different token sequence")
	}
}
