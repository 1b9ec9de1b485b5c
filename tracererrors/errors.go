package tracererrors

import (
	"errors"
	"strings"
)

// Recorder (R) Errors
var (
	ErrOperandOverrun     = errors.New("R1|OperandOverrun: Push immediate window exceeds the code buffer. The run aborts without appending the step.")
	ErrUnsupportedSuspend = errors.New("R2|UnsupportedSuspend: Engine signalled a mid-step suspension the synchronous driver cannot resolve.")
)

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	if len(parts) < 2 {
		return errStr
	}
	nameDesc := parts[1]
	// Split on ':' to separate the error name from its description.
	nameParts := strings.SplitN(nameDesc, ":", 2)
	if len(nameParts) < 1 {
		return errStr
	}
	return strings.TrimSpace(nameParts[0])
}
