package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newEventCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"busy"},
		Short:   "Record busy calendar time",
	}
	cmd.AddCommand(newEventAddCmd(a), newEventListCmd(a))
	return cmd
}

func newEventAddCmd(a *app) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add busy time; colliding study blocks are rescheduled",
		Example: `  studyplan event add "Lab section" --start "2026-03-03 11:30" --end "2026-03-03 13:00"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			from, err := a.parseWhen(start)
			if err != nil {
				return err
			}
			to, err := a.parseWhen(end)
			if err != nil {
				return err
			}
			ev, out, err := svc.AddCalendarEvent(commandContext(cmd), strings.Join(args, " "), from, to)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Added busy time %q %s [%s]\n", ev.Title, formatSpan(ev.Start, ev.End, a.location()), ev.ID)
			if len(out.Accepted)+len(out.Rejected) > 0 {
				printOutcome(w, out, a.location())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&start, "start", "s", "", "start time")
	cmd.Flags().StringVarP(&end, "end", "e", "", "end time")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newEventListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List busy calendar time",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			events, err := svc.Events(commandContext(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(w, "No calendar events.")
				return nil
			}
			for _, ev := range events {
				fmt.Fprintf(w, "%s  %s  [%s]\n", formatSpan(ev.Start, ev.End, a.location()), ev.Title, ev.ID)
			}
			return nil
		},
	}
}
