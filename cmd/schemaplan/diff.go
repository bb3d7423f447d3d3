package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tordrt/schemaplan"
	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/formatter"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/render"
	"github.com/tordrt/schemaplan/internal/schema"
)

func (a *app) diffCmd() *cobra.Command {
	var from, to, dialectName string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show the migration between two schemas",
		Long: `Diff computes the steps that turn the --from schema into the --to schema. Either side is a
database URL or a YAML snapshot; an omitted --from is the empty schema. Nothing is classified
or executed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" {
				return fmt.Errorf("--to is required")
			}
			format, err := a.format("summary", "summary", "steps", "sql")
			if err != nil {
				return err
			}
			var d dialect.Dialect
			if dialectName != "" {
				if d, err = dialect.Parse(dialectName); err != nil {
					return err
				}
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			current, desired, d, err := a.loadBoth(ctx, from, to, d)
			if err != nil {
				return err
			}

			m, err := schemaplan.Diff(current, desired, d, a.options())
			if err != nil {
				return err
			}

			w, done, err := a.output(cmd)
			if err != nil {
				return err
			}
			defer done()
			return writeMigration(w, m, format)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Current schema: database URL or snapshot file (default: empty schema)")
	cmd.Flags().StringVar(&to, "to", "", "Desired schema: database URL or snapshot file")
	cmd.Flags().StringVar(&dialectName, "dialect", "", "Dialect to diff for (default: taken from the inputs)")
	return cmd
}

// loadBoth describes both sides concurrently, each over its own connection.
// The dialect is d when set, otherwise the one the inputs agree on.
func (a *app) loadBoth(ctx context.Context, from, to string, d dialect.Dialect) (current, desired *schema.Schema, _ dialect.Dialect, _ error) {
	var fromDialect, toDialect dialect.Dialect
	opts := a.options()
	opts.Dialect = d

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if from == "" {
			current = schema.Empty()
			return nil
		}
		var err error
		if current, fromDialect, err = schemaplan.Load(gctx, from, opts); err != nil {
			return fmt.Errorf("failed to load --from: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if desired, toDialect, err = schemaplan.Load(gctx, to, opts); err != nil {
			return fmt.Errorf("failed to load --to: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, "", err
	}

	if d != "" {
		return current, desired, d, nil
	}
	switch {
	case fromDialect == "" && toDialect == "":
		return nil, nil, "", fmt.Errorf("neither input names a dialect; pass --dialect")
	case fromDialect == "":
		d = toDialect
	case toDialect == "" || fromDialect == toDialect:
		d = fromDialect
	default:
		return nil, nil, "", fmt.Errorf("--from is %s but --to is %s; pass --dialect", fromDialect, toDialect)
	}

	// A snapshot naming no dialect was built without the dialect's default
	// namespace; build it again now that the dialect is known.
	opts.Dialect = d
	var err error
	if from != "" && fromDialect == "" {
		if current, _, err = schemaplan.Load(ctx, from, opts); err != nil {
			return nil, nil, "", err
		}
	}
	if toDialect == "" {
		if desired, _, err = schemaplan.Load(ctx, to, opts); err != nil {
			return nil, nil, "", err
		}
	}
	return current, desired, d, nil
}

func writeMigration(w io.Writer, m *migration.Migration, format string) error {
	switch format {
	case "steps":
		return formatter.WriteSteps(w, m)
	case "sql":
		script, err := render.Script(m)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, script)
		return err
	default:
		_, err := fmt.Fprintln(w, migration.Summary(m))
		return err
	}
}
