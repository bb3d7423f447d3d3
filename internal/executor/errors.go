package executor

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaplan/internal/db"
	"github.com/tordrt/schemaplan/internal/safety"
)

// DestructiveChangeBlockedError is returned when the plan holds unexecutable
// steps and force is off. Nothing has been run.
type DestructiveChangeBlockedError struct {
	Unexecutable []safety.Diagnostic
}

func (e *DestructiveChangeBlockedError) Error() string {
	msgs := make([]string, len(e.Unexecutable))
	for i, d := range e.Unexecutable {
		msgs[i] = fmt.Sprintf("step %d: %s", d.StepIndex, d.Message)
	}
	return "migration blocked by destructive changes:\n  " + strings.Join(msgs, "\n  ")
}

// ExecutionError is a statement that failed. Applied lists the steps that
// remain applied: every step before StepIndex without transactional DDL, none
// with it.
type ExecutionError struct {
	StepIndex int
	Step      string
	Statement string
	Applied   []int
	Err       error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("failed to apply step %d (%s): %v", e.StepIndex, e.Step, e.Err)
	if code := db.ErrorCode(e.Err); code != "" {
		msg += " [" + code + "]"
	}
	return msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }
