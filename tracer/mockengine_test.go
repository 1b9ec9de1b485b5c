package tracer

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorfulnotion/evmtrace/opcodes"
)

// runMock drives a MockEngine to termination through a Recorder and returns
// the engine, the exit status, and the trace.
func runMock(t *testing.T, code []byte) (*MockEngine, ExitStatus, Trace) {
	t.Helper()
	engine := NewMockEngine(code)
	rec := NewRecorder(engine, code)
	exit, err := rec.Run()
	require.NoError(t, err)
	return engine, exit, rec.Trace()
}

func TestMockArithmetic(t *testing.T) {
	// PUSH1 3, PUSH1 10, SUB: SUB takes the top operand first, 10 - 3.
	_, exit, trace := runMock(t, []byte{0x60, 0x03, 0x60, 0x0a, 0x03, 0x00})
	assert.Equal(t, ExitSucceeded, exit)

	last := trace[len(trace)-1]
	require.Len(t, last.Stack, 1)
	assert.True(t, last.Stack[0].Eq(uint256.NewInt(7)))
}

func TestMockComparisonAndNot(t *testing.T) {
	// PUSH1 10, PUSH1 3, LT: 3 < 10 is true.
	_, _, trace := runMock(t, []byte{0x60, 0x0a, 0x60, 0x03, 0x10, 0x00})
	last := trace[len(trace)-1]
	require.Len(t, last.Stack, 1)
	assert.True(t, last.Stack[0].Eq(uint256.NewInt(1)))

	// ISZERO of zero.
	_, _, trace = runMock(t, []byte{0x60, 0x00, 0x15, 0x00})
	last = trace[len(trace)-1]
	assert.True(t, last.Stack[0].Eq(uint256.NewInt(1)))
}

func TestMockMemory(t *testing.T) {
	// PUSH1 42 (value), PUSH1 0x20 (offset), MSTORE, PUSH1 0x20, MLOAD, STOP.
	code := []byte{0x60, 0x2a, 0x60, 0x20, 0x52, 0x60, 0x20, 0x51, 0x00}
	engine, exit, trace := runMock(t, code)
	assert.Equal(t, ExitSucceeded, exit)

	// MSTORE at offset 0x20 grows memory to 64 bytes, word-aligned.
	assert.Len(t, engine.Memory(), 64)
	assert.Equal(t, byte(0x2a), engine.Memory()[63])

	last := trace[len(trace)-1]
	require.Len(t, last.Stack, 1)
	assert.True(t, last.Stack[0].Eq(uint256.NewInt(42)), "MLOAD reads back the stored word")

	// The terminal step's memory snapshot carries the full buffer.
	assert.Len(t, []byte(last.Memory), 64)
}

func TestMockMstore8(t *testing.T) {
	// PUSH1 0xff (value), PUSH1 0 (offset), MSTORE8, STOP.
	engine, _, _ := runMock(t, []byte{0x60, 0xff, 0x60, 0x00, 0x53, 0x00})
	require.Len(t, engine.Memory(), 32)
	assert.Equal(t, byte(0xff), engine.Memory()[0])
}

func TestMockJumpi(t *testing.T) {
	// PUSH1 1 (cond), PUSH1 8 (dest), JUMPI, INVALID, two dead bytes,
	// JUMPDEST at 8, STOP. The taken branch never executes the INVALID.
	code := []byte{0x60, 0x01, 0x60, 0x08, 0x57, 0xfe, 0x00, 0x00, 0x5b, 0x00}
	_, exit, trace := runMock(t, code)
	assert.Equal(t, ExitSucceeded, exit)

	want := []opcodes.OpCode{opcodes.PUSH1, opcodes.PUSH1, opcodes.JUMPI, opcodes.JUMPDEST, opcodes.STOP}
	require.Len(t, trace, len(want))
	for i, op := range want {
		assert.Equal(t, op, trace[i].Op, "step %d", i)
	}
	assert.Equal(t, uint64(8), trace[3].PC)
}

func TestMockJumpiNotTaken(t *testing.T) {
	// Zero condition falls through to the next instruction.
	code := []byte{0x60, 0x00, 0x60, 0x08, 0x57, 0x00, 0x00, 0x00, 0x5b, 0x00}
	_, exit, trace := runMock(t, code)
	assert.Equal(t, ExitSucceeded, exit)
	assert.Equal(t, uint64(5), trace[len(trace)-1].PC)
}

func TestMockBadJump(t *testing.T) {
	// Jump target is not a JUMPDEST.
	_, exit, _ := runMock(t, []byte{0x60, 0x03, 0x56, 0x00})
	assert.Equal(t, ExitBadJump, exit)
}

func TestMockDupSwap(t *testing.T) {
	// PUSH1 1, PUSH1 2, DUP2, SWAP1, STOP.
	// After DUP2: [1 2 1] bottom-first; after SWAP1: [1 1 2].
	_, _, trace := runMock(t, []byte{0x60, 0x01, 0x60, 0x02, 0x81, 0x90, 0x00})
	last := trace[len(trace)-1]
	require.Len(t, last.Stack, 3)
	assert.True(t, last.Stack[0].Eq(uint256.NewInt(2)), "top")
	assert.True(t, last.Stack[1].Eq(uint256.NewInt(1)))
	assert.True(t, last.Stack[2].Eq(uint256.NewInt(1)))
}

func TestMockRevertReturnData(t *testing.T) {
	// Store 0x2a at memory 31, then revert with the first 32 bytes.
	// PUSH1 42, PUSH1 31, MSTORE8, PUSH1 32 (size), PUSH1 0 (offset), REVERT.
	code := []byte{0x60, 0x2a, 0x60, 0x1f, 0x53, 0x60, 0x20, 0x60, 0x00, 0xfd}
	engine, exit, _ := runMock(t, code)
	assert.Equal(t, ExitReverted, exit)
	require.Len(t, engine.ReturnData(), 32)
	assert.Equal(t, byte(0x2a), engine.ReturnData()[31])
}

func TestMockStackUnderflow(t *testing.T) {
	_, exit, trace := runMock(t, []byte{0x01})
	assert.Equal(t, ExitStackUnderflow, exit)
	assert.Len(t, trace, 1, "the underflowing instruction is still recorded")
}

func TestMockUndefinedOpcode(t *testing.T) {
	_, exit, trace := runMock(t, []byte{0x0c})
	assert.Equal(t, ExitInvalidInstruction, exit)
	require.Len(t, trace, 1)
	assert.Equal(t, "UNDEFINED(0x0c)", trace[0].OpName)
}

func TestMockImplicitStop(t *testing.T) {
	// Running off the end of code is an implicit stop. The step after the
	// end is not decodable, so it records the INVALID sentinel.
	_, exit, trace := runMock(t, []byte{0x5b})
	assert.Equal(t, ExitSucceeded, exit)
	require.Len(t, trace, 2)
	assert.Equal(t, opcodes.JUMPDEST, trace[0].Op)
	assert.Equal(t, opcodes.INVALID, trace[1].Op)
}

func TestMockPushTruncatedLiteral(t *testing.T) {
	// The engine zero-pads a literal that runs past the code end; the
	// recorder refuses to trace it. Drive the engine directly.
	engine := NewMockEngine([]byte{0x61, 0xff})
	res := engine.Advance()
	assert.Equal(t, StepContinue, res.Outcome)
	require.Len(t, engine.Stack(), 1)
	assert.True(t, engine.Stack()[0].Eq(uint256.NewInt(0xff00)))
}

func TestMockExitedEngine(t *testing.T) {
	engine := NewMockEngine([]byte{0x00})
	res := engine.Advance()
	assert.Equal(t, StepExit, res.Outcome)

	_, ok := engine.Position()
	assert.False(t, ok, "a terminated engine reports no position")
	_, _, ok = engine.Inspect()
	assert.False(t, ok)

	// Advancing again re-reports the exit.
	res = engine.Advance()
	assert.Equal(t, StepExit, res.Outcome)
	assert.Equal(t, ExitSucceeded, res.Exit)
}
