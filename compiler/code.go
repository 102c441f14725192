package compiler

import (
	"encoding/binary"
	"fmt"
)

type Opcode byte

type Instructions []byte

// opcodes
// iota generates a distinct byte for each bytecode
const (
	OP_PUSH Opcode = iota
	OP_POP

	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_OR
	OP_AND
	OP_LT
	OP_LTE
	OP_GT
	OP_GTE
	OP_EQU
	OP_NEQU

	OP_PRINT

	OP_SET
	OP_GET

	OP_READ

	OP_GOTO
	OP_GOTOZ
	OP_GOTONZ

	OP_CALL
	OP_RETURN
	OP_RETURN_VALUE

	OP_CALLF

	OP_GETLOCAL
	OP_SETLOCAL

	OP_MAKE_ARRAY
	OP_SETINDEX
	OP_GETINDEX

	OP_HALT
)

// Hard limits of the machine. Overflowing any of them is a CapacityError.
const (
	MaxProgramLen = 2048
	MaxConstants  = 256
	MaxVariables  = 128
	MaxFunctions  = 128
	MaxArgs       = 32
	MaxMembers    = 32

	// Every integer operand is serialized little-endian at this width.
	OperandBytes = 4
)

// OpCodeDefinition describes an opcode for the disassembler.
// Fields:
//   - Name: The human-readable mnemonic, e.g. "push".
//   - Operands: How many 32-bit operands follow the opcode byte.
type OpCodeDefinition struct {
	Name     string
	Operands int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_PUSH:         {Name: "push", Operands: 1},
	OP_POP:          {Name: "pop"},
	OP_ADD:          {Name: "add"},
	OP_SUB:          {Name: "sub"},
	OP_MUL:          {Name: "mul"},
	OP_DIV:          {Name: "div"},
	OP_MOD:          {Name: "mod"},
	OP_OR:           {Name: "or"},
	OP_AND:          {Name: "and"},
	OP_LT:           {Name: "lt"},
	OP_LTE:          {Name: "lte"},
	OP_GT:           {Name: "gt"},
	OP_GTE:          {Name: "gte"},
	OP_EQU:          {Name: "equ"},
	OP_NEQU:         {Name: "nequ"},
	OP_PRINT:        {Name: "print"},
	OP_SET:          {Name: "set", Operands: 1},
	OP_GET:          {Name: "get", Operands: 1},
	OP_READ:         {Name: "read"},
	OP_GOTO:         {Name: "goto", Operands: 1},
	OP_GOTOZ:        {Name: "gotoz", Operands: 1},
	OP_GOTONZ:       {Name: "gotonz", Operands: 1},
	OP_CALL:         {Name: "call", Operands: 2},
	OP_RETURN:       {Name: "return"},
	OP_RETURN_VALUE: {Name: "return_value"},
	OP_CALLF:        {Name: "callf", Operands: 1},
	OP_GETLOCAL:     {Name: "getlocal", Operands: 1},
	OP_SETLOCAL:     {Name: "setlocal", Operands: 1},
	OP_MAKE_ARRAY:   {Name: "makearray"},
	OP_SETINDEX:     {Name: "setindex"},
	OP_GETINDEX:     {Name: "getindex"},
	OP_HALT:         {Name: "halt"},
}

// Get retrieves the definition of an opcode for disassembly.
func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode: %d undefined", op)
	}
	return def, nil
}

// Int32At decodes the little-endian 32-bit operand stored at pc. Signed
// operands (local slots) round-trip through the int32 cast.
func Int32At(code Instructions, pc int) int {
	return int(int32(binary.LittleEndian.Uint32(code[pc : pc+OperandBytes])))
}

// emit appends a single opcode byte to the program.
func (c *Compiler) emit(op Opcode) {
	if len(c.code) >= MaxProgramLen {
		panic(CapacityError{Message: "program overflow"})
	}
	c.code = append(c.code, byte(op))
}

// emitInt appends a 32-bit little-endian operand to the program.
func (c *Compiler) emitInt(value int) {
	if len(c.code)+OperandBytes > MaxProgramLen {
		panic(CapacityError{Message: "program overflow"})
	}
	var operand [OperandBytes]byte
	binary.LittleEndian.PutUint32(operand[:], uint32(int32(value)))
	c.code = append(c.code, operand[:]...)
}

// patchIntAt rewrites a previously reserved 4-byte operand slot; used to
// resolve forward branches once their target is known.
func (c *Compiler) patchIntAt(value int, pc int) {
	binary.LittleEndian.PutUint32(c.code[pc:pc+OperandBytes], uint32(int32(value)))
}
