package ast

// Expression is the interface implemented by every AST node. tiny has no
// statement/expression distinction: a program body is a sequence of
// expression nodes, and control-flow forms are expressions like any other.
type Expression interface {
	Accept(v Visitor) any
}

// Visitor visits every expression node kind. The bytecode lowering is the
// primary implementation.
type Visitor interface {
	VisitNumber(n Number) any
	VisitString(s String) any
	VisitGlobal(g Global) any
	VisitCall(c Call) any
	VisitForeignCall(c ForeignCall) any
	VisitBinary(b Binary) any
	VisitUnary(u Unary) any
	VisitGrouping(g Grouping) any
	VisitProc(p Proc) any
	VisitIf(i If) any
	VisitWhile(w While) any
	VisitReturn(r Return) any
	VisitRead(r Read) any
	VisitWrite(w Write) any
	VisitLocal(l Local) any
	VisitLocalRef(l LocalRef) any
	VisitMakeArray(m MakeArray) any
	VisitArrayIndex(a ArrayIndex) any
	VisitMemberDecl(m MemberDecl) any
}
