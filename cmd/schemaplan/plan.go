package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemaplan"
	"github.com/tordrt/schemaplan/internal/formatter"
)

func (a *app) planCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the classified migration for a database",
		Long: `Plan describes the database at --url, diffs it against the desired schema and classifies
every step as Safe, Risky or NotCastable, listing the warnings and the steps that would block
apply. Row counts are read but nothing is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.format("text", "text", "steps", "sql")
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			_, plan, closeConn, err := a.plan(ctx, to)
			if err != nil {
				return err
			}
			closeConn()

			w, done, err := a.output(cmd)
			if err != nil {
				return err
			}
			defer done()
			if format == "text" {
				return formatter.WritePlan(w, plan)
			}
			return writeMigration(w, plan.Migration, format)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Desired schema: snapshot file or database URL")
	return cmd
}

func (a *app) applyCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Migrate a database to the desired schema",
		Long: `Apply plans like the plan command and runs the migration. Plans with steps that would lose
data are refused unless --force is given. With --dry-run the statements are printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			conn, plan, closeConn, err := a.plan(ctx, to)
			if err != nil {
				return err
			}
			defer closeConn()

			w, done, err := a.output(cmd)
			if err != nil {
				return err
			}
			defer done()

			if plan.Migration.IsEmpty() {
				_, err := fmt.Fprintln(w, "No difference detected.")
				return err
			}
			report, err := schemaplan.Execute(ctx, conn, plan, a.options())
			if report != nil {
				writeReport(w, report, len(plan.Migration.Steps))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Desired schema: snapshot file or database URL")
	cmd.Flags().Bool("force", false, "Run steps that lose data")
	cmd.Flags().Bool("dry-run", false, "Print the statements without running them")
	a.bind(cmd.Flags(), "migrate.force", "force")
	a.bind(cmd.Flags(), "migrate.dry_run", "dry-run")
	return cmd
}

// plan connects to the database and classifies the migration to desired. The
// connection stays open until the returned function is called.
func (a *app) plan(ctx context.Context, to string) (schemaplan.Conn, *schemaplan.Result, func(), error) {
	if to == "" {
		return nil, nil, nil, fmt.Errorf("--to is required")
	}
	conn, closeConn, err := a.connect(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := a.options()
	opts.Dialect = conn.Dialect()
	desired, d, err := schemaplan.Load(ctx, to, opts)
	if err != nil {
		closeConn()
		return nil, nil, nil, fmt.Errorf("failed to load --to: %w", err)
	}
	if d != conn.Dialect() {
		closeConn()
		return nil, nil, nil, fmt.Errorf("--to is a %s schema but the database is %s", d, conn.Dialect())
	}

	plan, err := schemaplan.Plan(ctx, conn, desired, opts)
	if err != nil {
		closeConn()
		return nil, nil, nil, err
	}
	return conn, plan, closeConn, nil
}

func writeReport(w io.Writer, r *schemaplan.Report, total int) {
	if r.DryRun {
		for _, s := range r.Statements {
			_, _ = fmt.Fprintf(w, "%s;\n", s)
		}
		return
	}
	for _, warning := range r.Warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", warning.Message)
	}
	_, _ = fmt.Fprintf(w, "Applied %d of %d steps.\n", len(r.Applied), total)
}
