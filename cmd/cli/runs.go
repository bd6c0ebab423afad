package main

import (
	"fmt"
	"text/tabwriter"

	"discscore/adapters/db/postgres/migrations"
	"discscore/domain/core"
	"discscore/ports"

	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var filters ports.RunFilters

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd, true)
			if err != nil {
				return err
			}
			defer closeContainer(c)

			if len(args) == 1 {
				id, err := core.ParseRunID(args[0])
				if err != nil {
					return err
				}
				run, err := c.Runs.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if done, err := printJSON(cmd, run); done {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n%s\n", run.ID, run.Kind, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Query)
				return nil
			}

			runs, err := c.Runs.List(cmd.Context(), filters)
			if err != nil {
				return err
			}
			if done, err := printJSON(cmd, runs); done {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tN\tSTATISTIC\tDIAGNOSTIC\tCREATED")
			for _, r := range runs {
				n, stat := "-", "-"
				if r.SampleCount != nil {
					n = fmt.Sprint(*r.SampleCount)
				}
				if r.Statistic != nil {
					stat = fmt.Sprintf("%.5f", *r.Statistic)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", shortID(r.ID), r.Kind, n, stat, r.Diagnostic, r.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&filters.Kind, "kind", "", "Only runs of this kind")
	cmd.Flags().IntVar(&filters.Limit, "limit", 50, "Maximum runs listed")
	cmd.Flags().IntVar(&filters.Offset, "offset", 0, "Runs skipped")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending ledger migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// opening the ledger applies pending migrations
			c, err := loadContainer(cmd, true)
			if err != nil {
				return err
			}
			defer closeContainer(c)
			if !status {
				fmt.Fprintln(cmd.OutOrStdout(), "ledger is up to date")
				return nil
			}

			statuses, err := migrations.NewMigrator(c.DB).Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s applied=%v\n", s.Version, s.Applied)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Print every migration and whether it is applied")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
