package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/safety"
)

// WritePlan writes a classified plan: one line per step with its severity,
// then the warnings and the steps that block execution.
func WritePlan(w io.Writer, plan *safety.Result) error {
	m := plan.Migration
	if m.IsEmpty() {
		_, err := fmt.Fprintln(w, "No difference detected.")
		return err
	}

	_, _ = fmt.Fprintf(w, "PLAN %s (%d steps, worst: %s)\n", m.Dialect, len(m.Steps), plan.Worst())
	for i, s := range plan.Steps() {
		_, _ = fmt.Fprintf(w, "  %3d. [%s] %s\n", i+1, s.Severity, m.Describe(s.Step))
	}

	writeDiagnostics(w, m, "WARNINGS", plan.Warnings)
	writeDiagnostics(w, m, "UNEXECUTABLE", plan.Unexecutable)
	return nil
}

func writeDiagnostics(w io.Writer, m *migration.Migration, title string, diags []safety.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s:\n", title)
	for _, d := range diags {
		_, _ = fmt.Fprintf(w, "  - step %d (%s): %s\n", d.StepIndex+1, m.Describe(m.Steps[d.StepIndex]), d.Message)
	}
}

// WriteSteps writes the steps of m, one per line, in execution order.
func WriteSteps(w io.Writer, m *migration.Migration) error {
	for _, step := range m.Steps {
		if _, err := fmt.Fprintf(w, "%s: %s\n", step.Kind(), m.Describe(step)); err != nil {
			return err
		}
	}
	return nil
}
