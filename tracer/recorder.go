package tracer

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/colorfulnotion/evmtrace/log"
	"github.com/colorfulnotion/evmtrace/opcodes"
	"github.com/colorfulnotion/evmtrace/tracererrors"
)

// Recorder captures one ExecutionStep per instruction while driving the
// engine forward. It owns the engine exclusively for the lifetime of a run;
// the code buffer is read-only and shared.
type Recorder struct {
	engine Engine
	code   []byte
	trace  Trace
}

// NewRecorder returns a Recorder over the given engine and its code buffer.
// The code buffer must not be mutated while the run is in progress.
func NewRecorder(engine Engine, code []byte) *Recorder {
	return &Recorder{
		engine: engine,
		code:   code,
	}
}

// CaptureStep snapshots the instruction about to execute, appends it to the
// trace, and delegates a single-step advance to the engine.
//
// A push immediate running past the end of the code buffer is fatal: the run
// aborts with tracererrors.ErrOperandOverrun and the offending step is not
// appended. A StepSuspend outcome from the engine is likewise fatal with
// tracererrors.ErrUnsupportedSuspend.
func (r *Recorder) CaptureStep() (StepResult, error) {
	var pc uint64
	if pos, ok := r.engine.Position(); ok {
		pc = pos
	}

	var step ExecutionStep
	if op, stack, ok := r.engine.Inspect(); ok {
		var immediate []byte
		if n, isPush := op.PushSize(); isPush {
			start := pc + 1
			end := start + uint64(n)
			if end > uint64(len(r.code)) {
				return StepResult{}, fmt.Errorf("%w %s at pc %d needs %d immediate bytes, code buffer holds %d",
					tracererrors.ErrOperandOverrun, op, pc, n, len(r.code))
			}
			immediate = append([]byte(nil), r.code[start:end]...)
		}
		step = ExecutionStep{
			PC:        pc,
			Op:        op,
			OpName:    op.String(),
			Immediate: immediate,
			Stack:     reverseStack(stack),
			Memory:    append([]byte(nil), r.engine.Memory()...),
		}
	} else {
		// No decodable instruction: record the sentinel INVALID opcode with
		// the raw stack and memory.
		step = ExecutionStep{
			PC:     pc,
			Op:     opcodes.INVALID,
			OpName: opcodes.INVALID.Name(),
			Stack:  reverseStack(r.engine.Stack()),
			Memory: append([]byte(nil), r.engine.Memory()...),
		}
	}
	r.trace = append(r.trace, step)
	log.Trace(log.RecorderMonitoring, "captured step", "pc", step.PC, "op", step.OpName, "stackDepth", len(step.Stack), "memSize", len(step.Memory))

	res := r.engine.Advance()
	if res.Outcome == StepSuspend {
		return res, fmt.Errorf("%w engine suspended at pc %d", tracererrors.ErrUnsupportedSuspend, pc)
	}
	return res, nil
}

// Run drives CaptureStep until the engine terminates, returning the terminal
// status. The terminating instruction is recorded before its exit is
// returned. On a fatal recorder error the run stops; the trace accumulated up
// to the fault remains available through Trace for forensic use.
func (r *Recorder) Run() (ExitStatus, error) {
	for {
		res, err := r.CaptureStep()
		if err != nil {
			log.Error(log.RecorderMonitoring, "run aborted", "steps", len(r.trace), "err", err)
			return 0, err
		}
		if res.Outcome == StepExit {
			log.Debug(log.RecorderMonitoring, "run terminated", "steps", len(r.trace), "exit", res.Exit)
			return res.Exit, nil
		}
	}
}

// Trace returns the steps accumulated so far.
func (r *Recorder) Trace() Trace {
	return r.trace
}

// reverseStack copies the engine's bottom-first stack into recorded order,
// top-of-stack at index 0. The result is never nil.
func reverseStack(src []uint256.Int) []uint256.Int {
	dst := make([]uint256.Int, len(src))
	for i := range src {
		dst[len(src)-1-i] = src[i]
	}
	return dst
}
