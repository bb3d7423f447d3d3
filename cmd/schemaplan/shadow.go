package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemaplan"
)

func (a *app) shadowCmd() *cobra.Command {
	var to string
	var reuse bool

	cmd := &cobra.Command{
		Use:   "shadow",
		Short: "Check that a schema can be created from scratch",
		Long: `Shadow creates a throwaway database on the shadow server, migrates it from empty to the
desired schema, describes it back and checks that nothing drifted. The throwaway database
is dropped afterwards. With --reuse the shadow URL itself must point at an empty database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" {
				return fmt.Errorf("--to is required")
			}
			server, err := a.cfg.ShadowServerURL()
			if err != nil {
				return err
			}
			target, err := schemaplan.ParseURL(server)
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			opts := a.options()
			opts.Dialect = target.Dialect
			opts.ReuseShadow = reuse
			desired, d, err := schemaplan.Load(ctx, to, opts)
			if err != nil {
				return fmt.Errorf("failed to load --to: %w", err)
			}
			if d != target.Dialect {
				return fmt.Errorf("--to is a %s schema but the shadow server is %s", d, target.Dialect)
			}

			if err := schemaplan.ValidateOnShadow(ctx, server, desired, opts); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Shadow database check passed.")
			return err
		},
	}

	cmd.Flags().String("shadow-url", "", "Shadow server URL (default: the database URL)")
	cmd.Flags().StringVar(&to, "to", "", "Desired schema: snapshot file or database URL")
	cmd.Flags().BoolVar(&reuse, "reuse", false, "Use the shadow URL's database as is instead of creating one")
	a.bind(cmd.Flags(), "shadow.url", "shadow-url")
	return cmd
}
