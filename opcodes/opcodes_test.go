package opcodes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameTotal(t *testing.T) {
	// Every byte value must resolve to some mnemonic.
	for b := 0; b < 256; b++ {
		name := OpCode(b).Name()
		require.NotEmpty(t, name, "opcode 0x%02x has no name", b)
	}
}

func TestNameKnownOpcodes(t *testing.T) {
	assert.Equal(t, "STOP", STOP.Name())
	assert.Equal(t, "ADD", ADD.Name())
	assert.Equal(t, "KECCAK256", KECCAK256.Name())
	assert.Equal(t, "PUSH1", PUSH1.Name())
	assert.Equal(t, "PUSH32", PUSH32.Name())
	assert.Equal(t, "SELFDESTRUCT", SELFDESTRUCT.Name())
	assert.Equal(t, "INVALID", INVALID.Name())

	// Unassigned bytes, including post-sputnik additions like PUSH0 (0x5f).
	assert.Equal(t, "UNDEFINED", OpCode(0x0c).Name())
	assert.Equal(t, "UNDEFINED", OpCode(0x5f).Name())
	assert.Equal(t, "UNDEFINED", OpCode(0xf6).Name())
}

func TestStringDisplay(t *testing.T) {
	assert.Equal(t, "ADD", ADD.String())
	assert.Equal(t, "UNDEFINED(0x0c)", OpCode(0x0c).String())
	assert.Equal(t, "UNDEFINED(0xf6)", OpCode(0xf6).String())
}

func TestPushSize(t *testing.T) {
	for i := 0; i < 32; i++ {
		op := PUSH1 + OpCode(i)
		n, ok := op.PushSize()
		require.True(t, ok, "%s must be push-family", op)
		assert.Equal(t, i+1, n)
		assert.True(t, op.IsPush())
	}

	for _, op := range []OpCode{STOP, ADD, JUMPDEST, DUP1, SWAP16, OpCode(0x5f), INVALID} {
		_, ok := op.PushSize()
		assert.False(t, ok, "%s must not be push-family", op)
	}
}

func TestStringMatchesFormat(t *testing.T) {
	// The display form for an undefined byte carries the lower-case raw byte.
	for _, b := range []byte{0x0c, 0x21, 0xab, 0xef} {
		assert.Equal(t, fmt.Sprintf("UNDEFINED(0x%02x)", b), OpCode(b).String())
	}
}
