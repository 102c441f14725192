// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// A recursive descent parser is a top-down parser: it starts from the top
// grammar rule and works its way down into the nested sub-expressions
// before reaching the leaves of the syntax tree. Binary operators are
// handled by a Pratt-style precedence climbing layer on top of the factor
// grammar.
package parser

import (
	"fmt"
	"tiny/ast"
	"tiny/compiler"
	"tiny/token"
)

// Precedence levels for the binary operators, matching the surface
// grammar: higher binds tighter, -1 terminates the climb.
func precedenceOf(tokenType token.TokenType) int {
	switch tokenType {
	case token.MULT, token.DIV, token.MOD, token.BITAND, token.BITOR:
		return 5
	case token.ADD, token.SUB:
		return 4
	case token.LESS, token.LARGER, token.LESS_EQUAL, token.LARGER_EQUAL,
		token.EQUAL_EQUAL, token.NOT_EQUAL:
		return 3
	case token.ASSIGN:
		return 1
	}
	return -1
}

// Parser consumes the lexer's token slice and produces the program body as
// a sequence of expression nodes. Name resolution happens here: globals,
// procedures and locals are registered in the shared symbol tables as they
// are first mentioned, and literal values go straight into the constant
// pool, so the AST carries only resolved indices.
type Parser struct {
	tokens   []token.Token
	position int

	pool *compiler.ConstantPool
	syms *compiler.Symbols

	// scope handling: a stack of frames, where only `proc` pushes a new
	// frame; `if` and `while` bodies merely deepen scopeDepth within the
	// frame that is already open.
	scopes     []*scopeFrame
	scopeDepth int
}

// Make initializes and returns a new Parser instance over the given tokens.
// The constant pool and symbol tables are shared with the compiler that
// will lower the resulting AST.
func Make(tokens []token.Token, pool *compiler.ConstantPool, syms *compiler.Symbols) *Parser {
	return &Parser{
		tokens:   tokens,
		position: 0,
		pool:     pool,
		syms:     syms,
		scopes:   []*scopeFrame{{}},
	}
}

// Peeks the token at the parser's current position, without advancing.
func (p *Parser) peek() token.Token {
	return p.tokens[p.position]
}

// Retrieves the token at the parser's previous position.
func (p *Parser) previous() token.Token {
	return p.tokens[p.position-1]
}

// Increments the parser's position by one unit and consumes the current
// token.
func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.position++
	}
	return p.previous()
}

// Determines if the parser has consumed all the tokens.
func (p *Parser) isFinished() bool {
	return p.peek().TokenType == token.EOF
}

// Determines if the provided tokenType matches the token at the parser's
// current position.
func (p *Parser) checkType(tokenType token.TokenType) bool {
	if p.isFinished() {
		return false
	}
	return p.peek().TokenType == tokenType
}

// expect consumes and returns the current token if it has the given type,
// and raises a syntax error otherwise.
func (p *Parser) expect(tokenType token.TokenType, errorMsg string) token.Token {
	if p.checkType(tokenType) {
		return p.advance()
	}
	panic(SyntaxError{Message: errorMsg})
}

// Parse consumes the whole token stream and returns the top-level body.
// A stray `begin` or `end` at the top level is skipped: programs are
// conventionally wrapped in begin/end but the pair carries no meaning of
// its own.
func (p *Parser) Parse() (body []ast.Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case SyntaxError:
				err = v
			case compiler.SemanticError:
				err = v
			case compiler.CapacityError:
				err = v
			default:
				panic(r)
			}
		}
	}()

	for !p.isFinished() {
		if p.checkType(token.BEGIN) || p.checkType(token.END) {
			p.advance()
			continue
		}
		body = append(body, p.parseExpr())
	}
	return body, nil
}

// parseExpr parses one expression: a factor followed by any number of
// binary operator applications.
func (p *Parser) parseExpr() ast.Expression {
	factor := p.parseFactor()
	return p.parseBinRHS(0, factor)
}

// parseBinRHS is the precedence climbing loop. It keeps folding operators
// into the left-hand side while their precedence is at least exprPrec,
// recursing when the operator to the right binds tighter.
func (p *Parser) parseBinRHS(exprPrec int, lhs ast.Expression) ast.Expression {
	for {
		prec := precedenceOf(p.peek().TokenType)
		if prec < exprPrec {
			return lhs
		}

		operator := p.advance()
		rhs := p.parseFactor()

		nextPrec := precedenceOf(p.peek().TokenType)
		if prec < nextPrec {
			rhs = p.parseBinRHS(prec+1, rhs)
		}

		lhs = ast.Binary{Left: lhs, Operator: operator, Right: rhs}
	}
}

// parseBody parses statement-expressions up to and including the matching
// `end`.
func (p *Parser) parseBody() []ast.Expression {
	var body []ast.Expression
	for !p.checkType(token.END) {
		if p.isFinished() {
			panic(SyntaxError{Message: "expected 'end'"})
		}
		body = append(body, p.parseExpr())
	}
	p.advance() // eat 'end'
	return body
}

// parseFactor parses one factor: the grammar has exactly one case per
// leading token.
func (p *Parser) parseFactor() ast.Expression {
	if p.isFinished() {
		panic(SyntaxError{Message: "unexpected end of input"})
	}

	tok := p.advance()
	switch tok.TokenType {
	case token.IDENTIFIER:
		return p.parseIdentifier(tok.Lexeme)

	case token.LCUR:
		return p.parseMemberDecl()

	case token.LBRACK:
		length := p.parseExpr()
		p.expect(token.RBRACK, "expected ']' after array length expression")
		return ast.MakeArray{Length: length}

	case token.SUB, token.ADD:
		return ast.Unary{Operator: tok, Right: p.parseFactor()}

	case token.NUMBER:
		return ast.Number{Const: p.pool.RegisterNumber(tok.Literal.(float64))}

	case token.STRING:
		return ast.String{Const: p.pool.RegisterString(tok.Literal.(string))}

	case token.LOCAL:
		if p.scopeDepth == 0 {
			panic(compiler.SemanticError{Message: "cannot declare or reference locals in the global scope"})
		}
		name := p.expect(token.IDENTIFIER, "local name must be an identifier")
		return ast.Local{Slot: p.declareLocal(name.Lexeme)}

	case token.LOCALREF:
		if p.scopeDepth == 0 {
			panic(compiler.SemanticError{Message: "cannot declare or reference locals in the global scope"})
		}
		slot := p.referenceLocal(tok.Literal.(string))
		if p.checkType(token.LBRACK) {
			p.advance()
			index := p.parseExpr()
			p.expect(token.RBRACK, "expected ']' after array index expression")
			return ast.ArrayIndex{IsGlobal: false, Variable: slot, Index: index}
		}
		return ast.LocalRef{Slot: slot}

	case token.PROC:
		return p.parseProc()

	case token.IF:
		condition := p.parseExpr()
		p.expect(token.THEN, "expected 'then' after if condition")
		p.scopeDepth++
		body := p.parseBody()
		p.scopeDepth--
		return ast.If{Condition: condition, Body: body}

	case token.WHILE:
		condition := p.parseExpr()
		p.scopeDepth++
		body := p.parseBody()
		p.scopeDepth--
		return ast.While{Condition: condition, Body: body}

	case token.RETURN:
		if p.checkType(token.SEMICOLON) {
			p.advance()
			return ast.Return{}
		}
		value := p.parseExpr()
		// an optional ';' may follow the returned value
		if p.checkType(token.SEMICOLON) {
			p.advance()
		}
		return ast.Return{Value: value}

	case token.READ:
		return p.parseRead()

	case token.WRITE:
		return ast.Write{Exprs: p.parseBody()}

	case token.LPA:
		inner := p.parseExpr()
		p.expect(token.RPA, "expected matching ')' after previous '('")
		return ast.Grouping{Expression: inner}
	}

	panic(SyntaxError{Message: fmt.Sprintf("unexpected token '%s'", tok.Lexeme)})
}

// parseIdentifier disambiguates the three identifier-led factors by the
// next token: a call, a global array index, or a plain global load.
func (p *Parser) parseIdentifier(name string) ast.Expression {
	if p.checkType(token.LPA) {
		p.advance()
		args := p.parseCallArgs(name)
		// foreign bindings shadow user procedures of the same name
		if index, ok := p.syms.LookupForeign(name); ok {
			return ast.ForeignCall{Index: index, Args: args}
		}
		return ast.Call{Callee: p.syms.RegisterFunction(name), Args: args}
	}

	if p.checkType(token.LBRACK) {
		p.advance()
		index := p.parseExpr()
		p.expect(token.RBRACK, "expected ']' after array index expression")
		return ast.ArrayIndex{IsGlobal: true, Variable: p.syms.RegisterGlobal(name), Index: index}
	}

	return ast.Global{Index: p.syms.RegisterGlobal(name), Name: name}
}

// parseCallArgs parses the comma-separated argument list of a call whose
// '(' has already been consumed.
func (p *Parser) parseCallArgs(callee string) []ast.Expression {
	var args []ast.Expression
	for !p.checkType(token.RPA) {
		if p.isFinished() {
			panic(SyntaxError{Message: fmt.Sprintf("expected ')' after attempted call to proc %s", callee)})
		}
		args = append(args, p.parseExpr())
		if len(args) > compiler.MaxArgs {
			panic(compiler.CapacityError{Message: fmt.Sprintf("too many arguments in call to proc %s (max %d)", callee, compiler.MaxArgs)})
		}
		if p.checkType(token.COMMA) {
			p.advance()
		} else if !p.checkType(token.RPA) {
			panic(SyntaxError{Message: fmt.Sprintf("expected ')' after attempted call to proc %s", callee)})
		}
	}
	p.advance() // eat ')'
	return args
}

// parseMemberDecl parses `{ a, b, c }` into a member-name list node. The
// '{' has already been consumed.
func (p *Parser) parseMemberDecl() ast.Expression {
	var members []string
	for !p.checkType(token.RCUR) {
		name := p.expect(token.IDENTIFIER, "expected '}' after named member array declaration")
		members = append(members, name.Lexeme)
		if len(members) > compiler.MaxMembers {
			panic(compiler.CapacityError{Message: fmt.Sprintf("too many members in named member array declaration (max %d)", compiler.MaxMembers)})
		}
		if p.checkType(token.COMMA) {
			p.advance()
		} else if !p.checkType(token.RCUR) {
			panic(SyntaxError{Message: "expected '}' after named member array declaration"})
		}
	}
	p.advance() // eat '}'
	return ast.MemberDecl{Members: members}
}

// parseProc parses a procedure definition. The `proc` keyword has already
// been consumed. Procedures may only appear at the top level; the body
// opens a fresh scope frame whose parameters occupy negative slots.
func (p *Parser) parseProc() ast.Expression {
	if p.scopeDepth != 0 {
		panic(compiler.SemanticError{Message: "procedure definition in a local scope is not allowed"})
	}

	name := p.expect(token.IDENTIFIER, "proc name must be an identifier")
	id := p.syms.RegisterFunction(name.Lexeme)

	p.scopeDepth++
	p.pushFrame()

	p.expect(token.LPA, "expected '(' after proc name")
	var params []string
	for !p.checkType(token.RPA) {
		param := p.expect(token.IDENTIFIER, "proc parameter must be an identifier")
		params = append(params, param.Lexeme)
		if len(params) > compiler.MaxArgs {
			panic(compiler.CapacityError{Message: fmt.Sprintf("too many parameters for proc %s (max %d)", name.Lexeme, compiler.MaxArgs)})
		}
		if p.checkType(token.COMMA) {
			p.advance()
		} else if !p.checkType(token.RPA) {
			panic(SyntaxError{Message: fmt.Sprintf("expected ')' after parameters of proc %s", name.Lexeme)})
		}
	}
	p.advance() // eat ')'

	for _, param := range params {
		p.declareArgument(param, len(params))
	}

	body := p.parseBody()
	numLocals := p.currentFrame().numLocals

	p.scopeDepth--
	p.popFrame()

	return ast.Proc{Name: id, Body: body, NumLocals: numLocals}
}

// parseRead parses `read var... end`: a list of globals and $locals to
// store one input line into, each in turn.
func (p *Parser) parseRead() ast.Expression {
	var targets []ast.ReadTarget
	for !p.checkType(token.END) {
		if p.isFinished() {
			panic(SyntaxError{Message: "expected 'end'"})
		}
		tok := p.advance()
		switch tok.TokenType {
		case token.IDENTIFIER:
			targets = append(targets, ast.ReadTarget{Index: p.syms.RegisterGlobal(tok.Lexeme)})
		case token.LOCALREF:
			if p.scopeDepth == 0 {
				panic(compiler.SemanticError{Message: "cannot declare or reference locals in the global scope"})
			}
			targets = append(targets, ast.ReadTarget{Index: p.referenceLocal(tok.Literal.(string)), IsLocal: true})
		default:
			panic(SyntaxError{Message: "expected some sort of variable in list for read expression"})
		}
	}
	p.advance() // eat 'end'
	return ast.Read{Targets: targets}
}
