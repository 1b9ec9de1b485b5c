// EVM disassembler - linear sweep over a raw code buffer.

package opcodes

import (
	"fmt"
	"strings"
)

// Instruction represents a decoded instruction
type Instruction struct {
	Offset    int
	Op        OpCode
	Immediate []byte

	// Truncated is set when a trailing push's immediate window runs past
	// the end of the code buffer. The available bytes are still reported.
	Truncated bool
}

// Disassemble decodes a code buffer into its instruction sequence. Data
// embedded after a terminating instruction decodes as whatever instructions
// its bytes spell; a disassembler cannot tell code from data.
func Disassemble(code []byte) []Instruction {
	var instructions []Instruction

	offset := 0
	for offset < len(code) {
		op := OpCode(code[offset])
		inst := Instruction{Offset: offset, Op: op}

		size := 1
		if n, ok := op.PushSize(); ok {
			start := offset + 1
			end := start + n
			if end > len(code) {
				end = len(code)
				inst.Truncated = true
			}
			inst.Immediate = append([]byte(nil), code[start:end]...)
			size = 1 + n
		}

		instructions = append(instructions, inst)
		offset += size
	}

	return instructions
}

// Sprint returns a formatted listing, one instruction per line.
func Sprint(instructions []Instruction) string {
	var sb strings.Builder
	for _, inst := range instructions {
		switch {
		case inst.Truncated:
			fmt.Fprintf(&sb, "%5d: %s 0x%x <truncated>\n", inst.Offset, inst.Op, inst.Immediate)
		case len(inst.Immediate) > 0:
			fmt.Fprintf(&sb, "%5d: %s 0x%x\n", inst.Offset, inst.Op, inst.Immediate)
		default:
			fmt.Fprintf(&sb, "%5d: %s\n", inst.Offset, inst.Op)
		}
	}
	return sb.String()
}
