package tracer

import (
	"github.com/holiman/uint256"

	"github.com/colorfulnotion/evmtrace/log"
	"github.com/colorfulnotion/evmtrace/opcodes"
)

// mockMemoryLimit caps mock memory growth so a bogus offset exits the run
// instead of exhausting the test process.
const mockMemoryLimit = 1 << 24

// MockEngine implements the Engine interface with a minimal EVM stepper. It
// exists to exercise the collaborator contract in tests and examples; it
// supports stack, memory, and control-flow opcodes but no gas, storage, or
// call dispatch. Unsupported opcodes terminate with InvalidInstruction.
type MockEngine struct {
	code       []byte
	pc         uint64
	stack      []uint256.Int // bottom-first
	memory     []byte
	exited     bool
	exit       ExitStatus
	returnData []byte
}

// NewMockEngine returns a machine positioned at pc 0 with an empty stack and
// empty memory. The engine keeps a reference to code; it never mutates it.
func NewMockEngine(code []byte) *MockEngine {
	return &MockEngine{
		code: code,
	}
}

func (m *MockEngine) Position() (uint64, bool) {
	if m.exited {
		return 0, false
	}
	return m.pc, true
}

func (m *MockEngine) Inspect() (opcodes.OpCode, []uint256.Int, bool) {
	if m.exited || m.pc >= uint64(len(m.code)) {
		return 0, nil, false
	}
	return opcodes.OpCode(m.code[m.pc]), m.stack, true
}

func (m *MockEngine) Stack() []uint256.Int {
	return m.stack
}

func (m *MockEngine) Memory() []byte {
	return m.memory
}

// ReturnData returns the payload of a RETURN or REVERT, nil otherwise.
func (m *MockEngine) ReturnData() []byte {
	return m.returnData
}

// Advance executes the instruction at the current position. Running off the
// end of the code buffer is an implicit stop.
func (m *MockEngine) Advance() StepResult {
	if m.exited {
		return StepResult{Outcome: StepExit, Exit: m.exit}
	}
	if m.pc >= uint64(len(m.code)) {
		return m.terminate(ExitSucceeded)
	}

	op := opcodes.OpCode(m.code[m.pc])
	log.Trace(log.MachineMonitoring, "advance", "pc", m.pc, "op", op.String())

	switch {
	case op == opcodes.STOP:
		return m.terminate(ExitSucceeded)

	case op == opcodes.ADD:
		return m.binOp(func(z, x, y *uint256.Int) { z.Add(x, y) })
	case op == opcodes.MUL:
		return m.binOp(func(z, x, y *uint256.Int) { z.Mul(x, y) })
	case op == opcodes.SUB:
		return m.binOp(func(z, x, y *uint256.Int) { z.Sub(x, y) })
	case op == opcodes.DIV:
		return m.binOp(func(z, x, y *uint256.Int) { z.Div(x, y) })
	case op == opcodes.MOD:
		return m.binOp(func(z, x, y *uint256.Int) { z.Mod(x, y) })
	case op == opcodes.AND:
		return m.binOp(func(z, x, y *uint256.Int) { z.And(x, y) })
	case op == opcodes.OR:
		return m.binOp(func(z, x, y *uint256.Int) { z.Or(x, y) })
	case op == opcodes.XOR:
		return m.binOp(func(z, x, y *uint256.Int) { z.Xor(x, y) })

	case op == opcodes.LT:
		return m.cmpOp(func(x, y *uint256.Int) bool { return x.Lt(y) })
	case op == opcodes.GT:
		return m.cmpOp(func(x, y *uint256.Int) bool { return x.Gt(y) })
	case op == opcodes.EQ:
		return m.cmpOp(func(x, y *uint256.Int) bool { return x.Eq(y) })

	case op == opcodes.ISZERO:
		x, ok := m.pop()
		if !ok {
			return m.terminate(ExitStackUnderflow)
		}
		var z uint256.Int
		if x.IsZero() {
			z.SetOne()
		}
		m.push(z)
		m.pc++

	case op == opcodes.NOT:
		x, ok := m.pop()
		if !ok {
			return m.terminate(ExitStackUnderflow)
		}
		var z uint256.Int
		z.Not(&x)
		m.push(z)
		m.pc++

	case op == opcodes.POP:
		if _, ok := m.pop(); !ok {
			return m.terminate(ExitStackUnderflow)
		}
		m.pc++

	case op == opcodes.MLOAD:
		off, ok := m.pop()
		if !ok {
			return m.terminate(ExitStackUnderflow)
		}
		off64, ok := m.memOffset(&off, 32)
		if !ok {
			return m.terminate(ExitOutOfGas)
		}
		m.expand(off64 + 32)
		var z uint256.Int
		z.SetBytes(m.memory[off64 : off64+32])
		m.push(z)
		m.pc++

	case op == opcodes.MSTORE:
		off, val, ok := m.pop2()
		if !ok {
			return m.terminate(ExitStackUnderflow)
		}
		off64, ok := m.memOffset(&off, 32)
		if !ok {
			return m.terminate(ExitOutOfGas)
		}
		m.expand(off64 + 32)
		b := val.Bytes32()
		copy(m.memory[off64:off64+32], b[:])
		m.pc++

	case op == opcodes.MSTORE8:
		off, val, ok := m.pop2()
		if !ok {
			return m.terminate(ExitStackUnderflow)
		}
		off64, ok := m.memOffset(&off, 1)
		if !ok {
			return m.terminate(ExitOutOfGas)
		}
		m.expand(off64 + 1)
		m.memory[off64] = byte(val.Uint64())
		m.pc++

	case op == opcodes.JUMP:
		dest, ok := m.pop()
		if !ok {
			return m.terminate(ExitStackUnderflow)
		}
		return m.jump(&dest)

	case op == opcodes.JUMPI:
		dest, cond, ok := m.pop2()
		if !ok {
			return m.terminate(ExitStackUnderflow)
		}
		if cond.IsZero() {
			m.pc++
			return StepResult{Outcome: StepContinue}
		}
		return m.jump(&dest)

	case op == opcodes.PC:
		m.push(*uint256.NewInt(m.pc))
		m.pc++

	case op == opcodes.MSIZE:
		m.push(*uint256.NewInt(uint64(len(m.memory))))
		m.pc++

	case op == opcodes.JUMPDEST:
		m.pc++

	case op >= opcodes.PUSH1 && op <= opcodes.PUSH32:
		n, _ := op.PushSize()
		// Literal bytes past the end of code read as zeros.
		buf := make([]byte, n)
		start := m.pc + 1
		if start < uint64(len(m.code)) {
			copy(buf, m.code[start:])
		}
		var z uint256.Int
		z.SetBytes(buf)
		m.push(z)
		m.pc += uint64(n) + 1

	case op >= opcodes.DUP1 && op <= opcodes.DUP16:
		depth := int(op-opcodes.DUP1) + 1
		if len(m.stack) < depth {
			return m.terminate(ExitStackUnderflow)
		}
		m.push(m.stack[len(m.stack)-depth])
		m.pc++

	case op >= opcodes.SWAP1 && op <= opcodes.SWAP16:
		depth := int(op-opcodes.SWAP1) + 1
		if len(m.stack) < depth+1 {
			return m.terminate(ExitStackUnderflow)
		}
		top := len(m.stack) - 1
		m.stack[top], m.stack[top-depth] = m.stack[top-depth], m.stack[top]
		m.pc++

	case op == opcodes.RETURN:
		return m.haltWithData(ExitSucceeded)
	case op == opcodes.REVERT:
		return m.haltWithData(ExitReverted)

	default:
		return m.terminate(ExitInvalidInstruction)
	}

	return StepResult{Outcome: StepContinue}
}

func (m *MockEngine) terminate(status ExitStatus) StepResult {
	m.exited = true
	m.exit = status
	log.Debug(log.MachineMonitoring, "terminated", "pc", m.pc, "exit", status)
	return StepResult{Outcome: StepExit, Exit: status}
}

func (m *MockEngine) push(v uint256.Int) {
	m.stack = append(m.stack, v)
}

func (m *MockEngine) pop() (uint256.Int, bool) {
	if len(m.stack) == 0 {
		return uint256.Int{}, false
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, true
}

func (m *MockEngine) pop2() (uint256.Int, uint256.Int, bool) {
	a, ok := m.pop()
	if !ok {
		return uint256.Int{}, uint256.Int{}, false
	}
	b, ok := m.pop()
	if !ok {
		return uint256.Int{}, uint256.Int{}, false
	}
	return a, b, true
}

func (m *MockEngine) binOp(apply func(z, x, y *uint256.Int)) StepResult {
	x, y, ok := m.pop2()
	if !ok {
		return m.terminate(ExitStackUnderflow)
	}
	var z uint256.Int
	apply(&z, &x, &y)
	m.push(z)
	m.pc++
	return StepResult{Outcome: StepContinue}
}

func (m *MockEngine) cmpOp(test func(x, y *uint256.Int) bool) StepResult {
	x, y, ok := m.pop2()
	if !ok {
		return m.terminate(ExitStackUnderflow)
	}
	var z uint256.Int
	if test(&x, &y) {
		z.SetOne()
	}
	m.push(z)
	m.pc++
	return StepResult{Outcome: StepContinue}
}

func (m *MockEngine) jump(dest *uint256.Int) StepResult {
	if !dest.IsUint64() {
		return m.terminate(ExitBadJump)
	}
	d := dest.Uint64()
	if d >= uint64(len(m.code)) || opcodes.OpCode(m.code[d]) != opcodes.JUMPDEST {
		return m.terminate(ExitBadJump)
	}
	m.pc = d
	return StepResult{Outcome: StepContinue}
}

func (m *MockEngine) haltWithData(status ExitStatus) StepResult {
	off, size, ok := m.pop2()
	if !ok {
		return m.terminate(ExitStackUnderflow)
	}
	off64, ok := m.memOffset(&off, 0)
	if !ok {
		return m.terminate(ExitOutOfGas)
	}
	if !size.IsUint64() || off64+size.Uint64() > mockMemoryLimit {
		return m.terminate(ExitOutOfGas)
	}
	size64 := size.Uint64()
	m.expand(off64 + size64)
	m.returnData = append([]byte(nil), m.memory[off64:off64+size64]...)
	return m.terminate(status)
}

// memOffset converts a stack word into a memory offset, rejecting offsets
// whose expansion would exceed the mock memory limit.
func (m *MockEngine) memOffset(v *uint256.Int, span uint64) (uint64, bool) {
	if !v.IsUint64() {
		return 0, false
	}
	off := v.Uint64()
	if off+span > mockMemoryLimit {
		return 0, false
	}
	return off, true
}

// expand grows memory to cover [0, end), rounded up to a 32-byte boundary.
func (m *MockEngine) expand(end uint64) {
	if end <= uint64(len(m.memory)) {
		return
	}
	size := (end + 31) / 32 * 32
	grown := make([]byte, size)
	copy(grown, m.memory)
	m.memory = grown
}
