package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders a compiled program as one mnemonic per line, with the
// program counter of each instruction and its decoded operands. The output
// is meant for eyeballing the lowering, not for reassembly.
func Disassemble(prog *Program) string {
	var builder strings.Builder

	pc := 0
	for pc < len(prog.Code) {
		def, err := Get(Opcode(prog.Code[pc]))
		if err != nil {
			fmt.Fprintf(&builder, "%04d ??? (%d)\n", pc, prog.Code[pc])
			pc++
			continue
		}

		fmt.Fprintf(&builder, "%04d %s", pc, def.Name)
		pc++
		for i := 0; i < def.Operands; i++ {
			fmt.Fprintf(&builder, " %d", Int32At(prog.Code, pc))
			pc += OperandBytes
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
