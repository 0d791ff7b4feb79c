package main

import (
	"fmt"
	"sort"

	"github.com/akyairhashvil/studyplan/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	var week, out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a weekly schedule PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			loc := a.location()
			start := a.now()
			if week != "" {
				if start, err = a.parseWhen(week); err != nil {
					return err
				}
			}
			ctx := commandContext(cmd)
			blocks, err := svc.Schedule(ctx)
			if err != nil {
				return err
			}
			events, err := svc.Events(ctx)
			if err != nil {
				return err
			}
			assignments, err := svc.Assignments(ctx)
			if err != nil {
				return err
			}
			path, err := a.writeReport(out)(report.Week{
				Start:       report.WeekStart(start, loc),
				Location:    loc,
				Blocks:      blocks,
				Events:      events,
				Assignments: assignments,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&week, "week", "w", "", "any date in the week to report (default this week)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadSettings(cmd); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if used := a.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(w, "# %s\n", used)
			}
			keys := a.v.AllKeys()
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "%s = %v\n", k, a.v.Get(k))
			}
			fmt.Fprintf(w, "# database: %s\n", a.storePath())
			return nil
		},
	})
	return cmd
}
