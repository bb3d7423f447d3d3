// Package executor applies a classified migration to a database.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tordrt/schemaplan/internal/db"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/render"
	"github.com/tordrt/schemaplan/internal/safety"
)

// Report is the outcome of an Execute call.
type Report struct {
	// Applied holds the indexes of the steps that are in effect.
	Applied []int
	// Statements are the statements that ran, in order. In a dry run they are
	// the statements that would have run.
	Statements   []string
	Warnings     []safety.Diagnostic
	Unexecutable []safety.Diagnostic
	DryRun       bool
}

type executor struct {
	logger *slog.Logger
	dryRun bool
}

// Option configures Execute.
type Option func(*executor)

// WithLogger sets the logger. Execute logs nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(e *executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDryRun renders the plan without running it.
func WithDryRun(dryRun bool) Option {
	return func(e *executor) { e.dryRun = dryRun }
}

// Execute applies plan to conn.
//
// A plan with unexecutable steps is refused with a DestructiveChangeBlockedError
// unless force is set; nothing runs in that case. On dialects with
// transactional DDL the whole plan runs in one transaction. Elsewhere the
// steps run one by one and a failure leaves the earlier steps applied.
// The report is returned alongside DestructiveChangeBlockedError and
// ExecutionError.
func Execute(ctx context.Context, plan *safety.Result, conn db.Conn, force bool, opts ...Option) (*Report, error) {
	e := &executor{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}

	m := plan.Migration
	if conn.Dialect() != m.Dialect {
		return nil, fmt.Errorf("plan is for %s but the connection is to %s", m.Dialect, conn.Dialect())
	}

	report := &Report{
		Warnings:     plan.Warnings,
		Unexecutable: plan.Unexecutable,
		DryRun:       e.dryRun,
	}
	if plan.Blocked() && !force {
		return report, &DestructiveChangeBlockedError{Unexecutable: plan.Unexecutable}
	}
	for _, w := range plan.Warnings {
		e.logger.Warn("risky step", "index", w.StepIndex, "warning", w.Message)
	}
	for _, u := range plan.Unexecutable {
		e.logger.Warn("forcing unexecutable step", "index", u.StepIndex, "reason", u.Message)
	}

	steps, err := render.Render(m)
	if err != nil {
		return nil, err
	}

	if e.dryRun {
		for i, stmts := range steps {
			report.Applied = append(report.Applied, i)
			report.Statements = append(report.Statements, stmts...)
		}
		return report, nil
	}

	if m.Dialect.Capabilities().TransactionalDDL {
		err = e.runInTransaction(ctx, m, steps, conn, report)
	} else {
		err = e.runSequentially(ctx, m, steps, conn, report)
	}
	return report, err
}

// runSequentially runs each step on its own. report.Applied is a checkpoint:
// a failed run can be resumed from the first step missing from it.
func (e *executor) runSequentially(ctx context.Context, m *migration.Migration, steps [][]string, conn db.Conn, report *Report) error {
	for i, stmts := range steps {
		e.logStep(m, i)
		for _, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				return e.failure(m, i, stmt, report.Applied, err)
			}
			report.Statements = append(report.Statements, stmt)
		}
		report.Applied = append(report.Applied, i)
	}
	return nil
}

func (e *executor) runInTransaction(ctx context.Context, m *migration.Migration, steps [][]string, conn db.Conn, report *Report) error {
	// SQLite refuses to toggle foreign keys inside a transaction, and the
	// rebuild's DROP TABLE would otherwise cascade.
	rebuilds := render.RebuildsTables(m)
	if rebuilds {
		if err := conn.Exec(ctx, "PRAGMA foreign_keys=OFF"); err != nil {
			return connectionOrStatement(m, err)
		}
		defer func() {
			if err := conn.Exec(context.WithoutCancel(ctx), "PRAGMA foreign_keys=ON"); err != nil {
				e.logger.Error("failed to re-enable foreign keys", "error", err)
			}
		}()
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return &db.ConnectionError{Dialect: m.Dialect, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	rollback := func() {
		if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
			e.logger.Error("failed to roll back", "error", err)
		}
	}

	var ran []string
	last := -1
	for i, stmts := range steps {
		e.logStep(m, i)
		for _, stmt := range stmts {
			if err := tx.Exec(ctx, stmt); err != nil {
				rollback()
				return e.failure(m, i, stmt, nil, err)
			}
			ran = append(ran, stmt)
			last = i
		}
	}

	if rebuilds {
		if err := foreignKeyCheck(ctx, tx); err != nil {
			rollback()
			return e.failure(m, last, "PRAGMA foreign_key_check", nil, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		rollback()
		return e.failure(m, last, "COMMIT", nil, err)
	}

	report.Statements = ran
	for i := range steps {
		report.Applied = append(report.Applied, i)
	}
	return nil
}

func (e *executor) logStep(m *migration.Migration, i int) {
	step := m.Steps[i]
	e.logger.Info("applying step", "step", m.Describe(step), "index", i, "kind", step.Kind())
}

func (e *executor) failure(m *migration.Migration, i int, stmt string, applied []int, err error) error {
	err = connectionOrStatement(m, err)
	e.logger.Error("step failed", "index", i, "statement", stmt, "error", err)
	desc := ""
	if i >= 0 {
		desc = m.Describe(m.Steps[i])
	}
	return &ExecutionError{
		StepIndex: i,
		Step:      desc,
		Statement: stmt,
		Applied:   append([]int(nil), applied...),
		Err:       err,
	}
}

// connectionOrStatement marks transport failures and cancellation as
// connection errors. Statement errors are returned as they are.
func connectionOrStatement(m *migration.Migration, err error) error {
	var connErr *db.ConnectionError
	if errors.As(err, &connErr) || !db.IsConnectionFailure(err) {
		return err
	}
	return &db.ConnectionError{Dialect: m.Dialect, Err: err}
}

// ForeignKeyViolationError is reported when rebuilt SQLite tables hold rows
// that break a foreign key.
type ForeignKeyViolationError struct {
	Table  string
	Parent string
}

func (e *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("rows of `%s` reference missing rows of `%s`", e.Table, e.Parent)
}

func foreignKeyCheck(ctx context.Context, q db.Queryer) error {
	rows, err := q.Query(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		var (
			table, parent string
			rowid         *int64
			fkid          int64
		)
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("failed to scan foreign key check: %w", err)
		}
		return &ForeignKeyViolationError{Table: table, Parent: parent}
	}
	return rows.Err()
}
