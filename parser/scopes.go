package parser

import (
	"fmt"
	"tiny/compiler"
)

// localDecl is one declared local variable or parameter. Parameters carry
// negative slots (-N..-1 for an N-argument procedure); body locals count up
// from 0. The scope depth records where the declaration happened so a
// reference can only see declarations at or below its own depth.
type localDecl struct {
	name  string
	slot  int
	depth int
}

// scopeFrame owns the local declarations of one procedure (or of the top
// level, for the bottom frame). Clearing the declarations is simply popping
// the frame when the procedure closes.
type scopeFrame struct {
	decls           []localDecl
	numLocals       int
	numArgsDeclared int
}

func (p *Parser) currentFrame() *scopeFrame {
	return p.scopes[len(p.scopes)-1]
}

func (p *Parser) pushFrame() {
	p.scopes = append(p.scopes, &scopeFrame{})
}

func (p *Parser) popFrame() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// declareLocal reserves the next non-negative slot in the current frame.
func (p *Parser) declareLocal(name string) int {
	frame := p.currentFrame()
	slot := frame.numLocals
	frame.numLocals++
	frame.decls = append(frame.decls, localDecl{name: name, slot: slot, depth: p.scopeDepth})
	return slot
}

// declareArgument assigns the next parameter its negative slot: argument 0
// of an N-argument procedure sits at frame pointer - N.
func (p *Parser) declareArgument(name string, nargs int) int {
	frame := p.currentFrame()
	slot := -nargs + frame.numArgsDeclared
	frame.numArgsDeclared++
	frame.decls = append(frame.decls, localDecl{name: name, slot: slot, depth: p.scopeDepth})
	return slot
}

// referenceLocal resolves a $name against the currently open local table:
// the most recent declaration with that name whose scope depth does not
// exceed the current depth wins.
func (p *Parser) referenceLocal(name string) int {
	frame := p.currentFrame()
	for i := len(frame.decls) - 1; i >= 0; i-- {
		decl := frame.decls[i]
		if decl.name == name && decl.depth <= p.scopeDepth {
			return decl.slot
		}
	}
	panic(compiler.SemanticError{Message: fmt.Sprintf("attempted to reference non-existent local variable '%s'", name)})
}
