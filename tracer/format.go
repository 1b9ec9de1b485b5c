package tracer

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FormatStep renders one step as human-readable text: program counter,
// opcode with immediate, the stack top-first, and memory as one hex blob.
func FormatStep(step *ExecutionStep) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pc: %d\n", step.PC)
	fmt.Fprintf(&sb, "op: %s\n", step.PrettyOpcode())
	sb.WriteString("stack: [")
	for i := range step.Stack {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(step.Stack[i].Hex())
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "memory: %s\n\n", hexutil.Encode(step.Memory))
	return sb.String()
}

// FormatTrace renders a whole trace in recorded order. It is a pure function
// of the trace contents.
func FormatTrace(trace Trace) string {
	var sb strings.Builder
	for i := range trace {
		sb.WriteString(FormatStep(&trace[i]))
	}
	return sb.String()
}

// WriteTrace emits the formatted trace to a destination chosen by the caller.
func WriteTrace(w io.Writer, trace Trace) error {
	_, err := io.WriteString(w, FormatTrace(trace))
	return err
}
