package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemaplan"
	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/formatter"
	"github.com/tordrt/schemaplan/internal/schema"
	"github.com/tordrt/schemaplan/internal/snapshot"
)

func (a *app) describeCmd() *cobra.Command {
	var splitThreshold int

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe a database schema",
		Long: `Describe reads the tables, columns, indexes, foreign keys, enums, sequences and views of a
database and prints them as compact text, markdown, or a YAML snapshot that the other
commands accept in place of a database URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			format, err := a.format("text", "text", "markdown", "yaml")
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			s, d, err := schemaplan.Load(ctx, a.cfg.Database.URL, a.options())
			if err != nil {
				return err
			}
			return a.writeSchema(cmd, s, d, format, splitThreshold)
		},
	}

	cmd.Flags().StringP("output-dir", "d", "", "Output directory for multi-file output")
	cmd.Flags().IntVar(&splitThreshold, "split-threshold", 0, "Split into multiple files when table count exceeds this (requires --output-dir)")
	a.bind(cmd.Flags(), "output.dir", "output-dir")
	return cmd
}

func (a *app) writeSchema(cmd *cobra.Command, s *schema.Schema, d dialect.Dialect, format string, splitThreshold int) error {
	shouldSplit := a.cfg.Output.Dir != "" && (splitThreshold == 0 || len(s.Tables()) > splitThreshold)
	if shouldSplit {
		if format == "yaml" {
			return fmt.Errorf("yaml output cannot be split into multiple files")
		}
		if err := formatter.NewMultiFileFormatter(a.cfg.Output.Dir, format).Format(s); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	w, done, err := a.output(cmd)
	if err != nil {
		return err
	}
	defer done()

	switch format {
	case "markdown":
		err = formatter.NewMarkdownFormatter(w).Format(s)
	case "yaml":
		err = snapshot.Write(w, s, d)
	default:
		err = formatter.NewTextFormatter(w).Format(s)
	}
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}
