package opcodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	code := []byte{0x60, 0x05, 0x61, 0xaa, 0xbb, 0x01, 0x00}
	instructions := Disassemble(code)
	require.Len(t, instructions, 4)

	assert.Equal(t, Instruction{Offset: 0, Op: PUSH1, Immediate: []byte{0x05}}, instructions[0])
	assert.Equal(t, Instruction{Offset: 2, Op: PUSH2, Immediate: []byte{0xaa, 0xbb}}, instructions[1])
	assert.Equal(t, Instruction{Offset: 5, Op: ADD}, instructions[2])
	assert.Equal(t, Instruction{Offset: 6, Op: STOP}, instructions[3])
}

func TestDisassembleTruncatedPush(t *testing.T) {
	code := []byte{0x00, 0x63, 0x01, 0x02}
	instructions := Disassemble(code)
	require.Len(t, instructions, 2)

	last := instructions[1]
	assert.Equal(t, PUSH4, last.Op)
	assert.True(t, last.Truncated)
	assert.Equal(t, []byte{0x01, 0x02}, last.Immediate)
}

func TestDisassembleEmpty(t *testing.T) {
	assert.Empty(t, Disassemble(nil))
}

func TestSprint(t *testing.T) {
	code := []byte{0x60, 0x05, 0x0c, 0x00}
	listing := Sprint(Disassemble(code))
	assert.Equal(t, "    0: PUSH1 0x05\n    2: UNDEFINED(0x0c)\n    3: STOP\n", listing)
}
