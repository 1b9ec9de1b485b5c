package tracer

import (
	"github.com/holiman/uint256"

	"github.com/colorfulnotion/evmtrace/opcodes"
)

// Engine is the single-step collaborator the Recorder drives. The Recorder
// holds the engine exclusively for the duration of a run and never mutates
// its state other than through Advance.
type Engine interface {
	// Position returns the byte offset of the instruction about to execute.
	// ok is false when the engine cannot report a position, such as before
	// the first step or after termination.
	Position() (uint64, bool)

	// Inspect returns the raw opcode byte about to execute together with the
	// engine's operand stack, bottom-first. ok is false when no instruction
	// is currently decodable.
	Inspect() (opcodes.OpCode, []uint256.Int, bool)

	// Stack returns the raw operand stack, bottom-first. It is the fallback
	// view when Inspect reports no decodable instruction.
	Stack() []uint256.Int

	// Memory returns the current linear memory. The caller must copy it
	// before retaining it.
	Memory() []byte

	// Advance executes exactly one instruction.
	Advance() StepResult
}

// StepOutcome classifies the result of a single Advance.
type StepOutcome int

const (
	// StepContinue means the engine executed the instruction and has more to run.
	StepContinue StepOutcome = iota

	// StepExit means the instruction terminated the run; StepResult.Exit holds
	// the terminal status.
	StepExit

	// StepSuspend means the engine handed control out mid-step. It must never
	// occur in this synchronous integration and the Recorder treats it as a
	// fatal invariant violation.
	StepSuspend
)

// StepResult is the outcome of a delegated single-step advance.
type StepResult struct {
	Outcome StepOutcome
	Exit    ExitStatus // valid only when Outcome is StepExit
}

// ExitStatus is the terminal value of a run. Terminal statuses are not errors
// from the recorder's perspective; they are returned alongside the trace.
type ExitStatus uint8

const (
	ExitSucceeded ExitStatus = iota
	ExitReverted
	ExitOutOfGas
	ExitInvalidInstruction
	ExitStackUnderflow
	ExitBadJump
)

func (s ExitStatus) String() string {
	switch s {
	case ExitSucceeded:
		return "Succeeded"
	case ExitReverted:
		return "Reverted"
	case ExitOutOfGas:
		return "OutOfGas"
	case ExitInvalidInstruction:
		return "InvalidInstruction"
	case ExitStackUnderflow:
		return "StackUnderflow"
	case ExitBadJump:
		return "BadJump"
	default:
		return "Unknown"
	}
}

// Failed reports whether the run ended in anything other than success.
func (s ExitStatus) Failed() bool {
	return s != ExitSucceeded
}
