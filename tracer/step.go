package tracer

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/colorfulnotion/evmtrace/opcodes"
)

// ExecutionStep is the snapshot of one executed instruction. Steps are never
// mutated after the Recorder appends them.
type ExecutionStep struct {
	PC     uint64         `json:"pc"`
	Op     opcodes.OpCode `json:"opcode"`
	OpName string         `json:"opName"`

	// Immediate holds the literal operand bytes for push-family opcodes,
	// nil for everything else.
	Immediate hexutil.Bytes `json:"immediate,omitempty"`

	// Stack lists the operand stack with the top-of-stack element at index 0.
	Stack []uint256.Int `json:"stack"`

	// Memory is a full copy of the machine's linear memory at capture time.
	Memory hexutil.Bytes `json:"memory"`
}

// PrettyOpcode renders the opcode with its immediate, e.g. "PUSH1(0x05)".
func (s *ExecutionStep) PrettyOpcode() string {
	if len(s.Immediate) > 0 {
		return fmt.Sprintf("%s(%s)", s.Op, hexutil.Encode(s.Immediate))
	}
	return s.Op.String()
}

// Trace is the ordered, append-only step sequence of one run. Trace order is
// execution order.
type Trace []ExecutionStep
