// This file implements the bytecode lowering: an ast.Visitor that walks the
// parsed program and emits the flat instruction stream the VM executes.

package compiler

import (
	"fmt"
	"tiny/ast"
	"tiny/token"
)

// binaryOpcodes maps an arithmetic or comparison operator token to the
// opcode it lowers to. Assignment is not here: it dispatches on the shape
// of its left-hand side instead.
var binaryOpcodes = map[token.TokenType]Opcode{
	token.ADD:          OP_ADD,
	token.SUB:          OP_SUB,
	token.MULT:         OP_MUL,
	token.DIV:          OP_DIV,
	token.MOD:          OP_MOD,
	token.BITOR:        OP_OR,
	token.BITAND:       OP_AND,
	token.LESS:         OP_LT,
	token.LESS_EQUAL:   OP_LTE,
	token.LARGER:       OP_GT,
	token.LARGER_EQUAL: OP_GTE,
	token.EQUAL_EQUAL:  OP_EQU,
	token.NOT_EQUAL:    OP_NEQU,
}

// Compiler lowers a parsed program to bytecode. It shares the constant pool
// and symbol tables with the parser that produced the AST.
type Compiler struct {
	code Instructions
	pool *ConstantPool
	syms *Symbols
}

// New creates a Compiler over the given constant pool and symbol tables.
func New(pool *ConstantPool, syms *Symbols) *Compiler {
	return &Compiler{
		code: Instructions{},
		pool: pool,
		syms: syms,
	}
}

// Compile lowers the program body to bytecode and appends the trailing
// HALT. Semantic and capacity violations are reported as errors; the
// returned Program is only valid when err is nil.
func (c *Compiler) Compile(body []ast.Expression) (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case SemanticError:
				err = v
			case CapacityError:
				err = v
			case DeveloperError:
				err = v
			default:
				panic(r)
			}
		}
	}()

	c.compileBody(body)
	for i, pc := range c.syms.FunctionPCs {
		if pc < 0 {
			panic(SemanticError{Message: fmt.Sprintf("proc '%s' was called but never defined", c.syms.FunctionNames[i])})
		}
	}
	c.emit(OP_HALT)
	return &Program{Code: c.code, Constants: c.pool, Symbols: c.syms}, nil
}

func (c *Compiler) compileBody(body []ast.Expression) {
	for _, expr := range body {
		c.compileExpr(expr)
	}
}

func (c *Compiler) compileExpr(expr ast.Expression) {
	expr.Accept(c)
}

func (c *Compiler) VisitNumber(n ast.Number) any {
	c.emit(OP_PUSH)
	c.emitInt(n.Const)
	return nil
}

func (c *Compiler) VisitString(s ast.String) any {
	c.emit(OP_PUSH)
	c.emitInt(s.Const)
	return nil
}

func (c *Compiler) VisitGlobal(g ast.Global) any {
	if !c.syms.Globals[g.Index].Initialized {
		panic(SemanticError{Message: fmt.Sprintf("attempted to use uninitialized variable '%s'", g.Name)})
	}
	c.emit(OP_GET)
	c.emitInt(g.Index)
	return nil
}

func (c *Compiler) VisitCall(call ast.Call) any {
	for _, arg := range call.Args {
		c.compileExpr(arg)
	}
	c.emit(OP_CALL)
	c.emitInt(len(call.Args))
	c.emitInt(call.Callee)
	return nil
}

func (c *Compiler) VisitForeignCall(call ast.ForeignCall) any {
	for _, arg := range call.Args {
		c.compileExpr(arg)
	}
	c.emit(OP_CALLF)
	c.emitInt(call.Index)
	return nil
}

func (c *Compiler) VisitBinary(b ast.Binary) any {
	if b.Operator.TokenType == token.ASSIGN {
		c.assign(b.Left, b.Right)
		return nil
	}

	op, ok := binaryOpcodes[b.Operator.TokenType]
	if !ok {
		panic(DeveloperError{Message: fmt.Sprintf("no lowering for binary operator '%s'", b.Operator.Lexeme)})
	}
	c.compileExpr(b.Left)
	c.compileExpr(b.Right)
	c.emit(op)
	return nil
}

// assign emits the instruction sequence for `lhs = rhs`. The left-hand
// side's node kind picks the sequence; anything but a variable or an array
// element is rejected.
func (c *Compiler) assign(lhs ast.Expression, rhs ast.Expression) {
	switch target := lhs.(type) {
	case ast.Global:
		if decl, ok := rhs.(ast.MemberDecl); ok {
			// member lists are a compile-time decoration of the
			// global's record; no code is emitted
			members := make([]string, len(decl.Members))
			copy(members, decl.Members)
			c.syms.Globals[target.Index].Members = members
			return
		}
		c.compileExpr(rhs)
		c.emit(OP_SET)
		c.emitInt(target.Index)
		c.syms.Globals[target.Index].Initialized = true

	case ast.Local:
		c.compileExpr(rhs)
		c.emit(OP_SETLOCAL)
		c.emitInt(target.Slot)

	case ast.LocalRef:
		c.compileExpr(rhs)
		c.emit(OP_SETLOCAL)
		c.emitInt(target.Slot)

	case ast.ArrayIndex:
		if target.IsGlobal {
			c.emit(OP_GET)
		} else {
			c.emit(OP_GETLOCAL)
		}
		c.emitInt(target.Variable)
		c.compileExpr(target.Index)
		c.compileExpr(rhs)
		c.emit(OP_SETINDEX)

	default:
		panic(SemanticError{Message: "LHS of assignment operation must be a local or a global variable"})
	}
}

func (c *Compiler) VisitUnary(u ast.Unary) any {
	c.compileExpr(u.Right)
	if u.Operator.TokenType == token.SUB {
		c.emit(OP_PUSH)
		c.emitInt(c.pool.RegisterNumber(-1))
		c.emit(OP_MUL)
	}
	return nil
}

func (c *Compiler) VisitGrouping(g ast.Grouping) any {
	c.compileExpr(g.Expression)
	return nil
}

// VisitProc lays out a procedure: an unconditional jump over the body so
// straight-line execution never falls into it, the recorded entry PC, a
// prologue pushing one zero per body local, the body, and a trailing
// RETURN for procedures that end without one.
func (c *Compiler) VisitProc(p ast.Proc) any {
	c.emit(OP_GOTO)
	skipGotoPc := len(c.code)
	c.emitInt(0)

	c.syms.FunctionPCs[p.Name] = len(c.code)

	zeroIdx := c.pool.RegisterNumber(0)
	for i := 0; i < p.NumLocals; i++ {
		c.emit(OP_PUSH)
		c.emitInt(zeroIdx)
	}

	c.compileBody(p.Body)
	c.emit(OP_RETURN)
	c.patchIntAt(len(c.code), skipGotoPc)
	return nil
}

func (c *Compiler) VisitIf(i ast.If) any {
	c.compileExpr(i.Condition)
	c.emit(OP_GOTOZ)
	skipGotoPc := len(c.code)
	c.emitInt(0)
	c.compileBody(i.Body)
	c.patchIntAt(len(c.code), skipGotoPc)
	return nil
}

func (c *Compiler) VisitWhile(w ast.While) any {
	condPc := len(c.code)
	c.compileExpr(w.Condition)
	c.emit(OP_GOTOZ)
	skipGotoPc := len(c.code)
	c.emitInt(0)
	c.compileBody(w.Body)
	c.emit(OP_GOTO)
	c.emitInt(condPc)
	c.patchIntAt(len(c.code), skipGotoPc)
	return nil
}

func (c *Compiler) VisitReturn(r ast.Return) any {
	if r.Value != nil {
		c.compileExpr(r.Value)
		c.emit(OP_RETURN_VALUE)
		return nil
	}
	c.emit(OP_RETURN)
	return nil
}

func (c *Compiler) VisitRead(r ast.Read) any {
	for _, target := range r.Targets {
		c.emit(OP_READ)
		if target.IsLocal {
			c.emit(OP_SETLOCAL)
		} else {
			c.emit(OP_SET)
		}
		c.emitInt(target.Index)
	}
	return nil
}

func (c *Compiler) VisitWrite(w ast.Write) any {
	for _, expr := range w.Exprs {
		c.compileExpr(expr)
		c.emit(OP_PRINT)
	}
	return nil
}

func (c *Compiler) VisitLocal(l ast.Local) any {
	// a bare local declaration reserves its slot but emits no code
	return nil
}

func (c *Compiler) VisitLocalRef(l ast.LocalRef) any {
	c.emit(OP_GETLOCAL)
	c.emitInt(l.Slot)
	return nil
}

func (c *Compiler) VisitMakeArray(m ast.MakeArray) any {
	c.compileExpr(m.Length)
	c.emit(OP_MAKE_ARRAY)
	return nil
}

func (c *Compiler) VisitArrayIndex(a ast.ArrayIndex) any {
	if a.IsGlobal {
		c.emit(OP_GET)
	} else {
		c.emit(OP_GETLOCAL)
	}
	c.emitInt(a.Variable)
	c.compileExpr(a.Index)
	c.emit(OP_GETINDEX)
	return nil
}

func (c *Compiler) VisitMemberDecl(m ast.MemberDecl) any {
	panic(SemanticError{Message: "a member list may only appear as the RHS of an assignment to a global variable"})
}
