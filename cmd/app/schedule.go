package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/util"
	"github.com/spf13/cobra"
)

// blockJSON is the --json shape of a scheduled block.
type blockJSON struct {
	ID           string `json:"id"`
	AssignmentID string `json:"assignment_id,omitempty"`
	Title        string `json:"title"`
	Category     string `json:"category,omitempty"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Status       string `json:"status"`
	Locked       bool   `json:"locked"`
	UserEdited   bool   `json:"user_edited"`
}

func filterBlocks(blocks []models.ScheduledBlock, q util.FilterQuery) []models.ScheduledBlock {
	if q.Empty() {
		return blocks
	}
	var out []models.ScheduledBlock
	for _, b := range blocks {
		if !util.MatchAny(q.Category, string(b.Category)) ||
			!util.MatchAny(q.Status, string(b.Status)) ||
			!util.MatchAny(q.Assignment, b.AssignmentID) ||
			!util.ContainsAll(b.Title, q.Text) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func newScheduleCmd(a *app) *cobra.Command {
	var filter string
	var archived, asJSON bool
	cmd := &cobra.Command{
		Use:     "schedule",
		Aliases: []string{"ls"},
		Short:   "Show scheduled blocks in time order",
		Example: `  studyplan schedule --filter "category:exam status:pending"
  studyplan schedule --archived --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			blocks, err := svc.Schedule(ctx)
			if err != nil {
				return err
			}
			if archived {
				old, err := svc.Archived(ctx)
				if err != nil {
					return err
				}
				blocks = append(blocks, old...)
			}
			blocks = filterBlocks(blocks, util.ParseFilterQuery(filter))

			w := cmd.OutOrStdout()
			loc := a.location()
			if asJSON {
				out := make([]blockJSON, 0, len(blocks))
				for _, b := range blocks {
					out = append(out, blockJSON{
						ID:           b.ID,
						AssignmentID: b.AssignmentID,
						Title:        b.Title,
						Category:     string(b.Category),
						Start:        b.Start.In(loc).Format("2006-01-02T15:04:05Z07:00"),
						End:          b.End.In(loc).Format("2006-01-02T15:04:05Z07:00"),
						Status:       string(b.Status),
						Locked:       b.Locked,
						UserEdited:   b.UserEdited,
					})
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if len(blocks) == 0 {
				fmt.Fprintln(w, "Nothing scheduled.")
				return nil
			}
			heading(w, "SCHEDULE")
			day := ""
			for _, b := range blocks {
				if d := b.Start.In(loc).Format("Monday, Jan 2"); d != day {
					if day != "" {
						fmt.Fprintln(w)
					}
					fmt.Fprintln(w, strings.ToUpper(d))
					day = d
				}
				printBlock(w, b, loc)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "filter such as \"category:exam status:pending assignment:<id> words\"")
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived blocks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <assignment-id>",
		Short: "Show how an assignment decomposes into study steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			steps, err := svc.Plan(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			loc := a.location()
			for _, s := range steps {
				fmt.Fprintf(w, "%d/%d  %3dm  %s  %s\n",
					s.Index, s.Count, s.Minutes, s.PlannedAt.In(loc).Format("Mon Jan 2 15:04"), s.Title)
			}
			return nil
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Schedule assignments that have no plan or a stale one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Refresh(commandContext(cmd))
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), out, a.location())
			return nil
		},
	}
}

func newRegenerateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild every plan, keeping edited, locked and completed blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			out, err := svc.RegenerateAll(commandContext(cmd))
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), out, a.location())
			return nil
		},
	}
}

func newAttemptsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attempts [block-id]",
		Short: "Show the reschedule audit log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			list, err := svc.Attempts(commandContext(cmd), id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(w, "No reschedule attempts.")
				return nil
			}
			loc := a.location()
			for _, at := range list {
				result := "ok"
				if !at.Success {
					result = "failed: " + at.FailureReason
				}
				target := "-"
				if at.NewStart != nil && at.NewEnd != nil {
					target = formatSpan(*at.NewStart, *at.NewEnd, loc)
				}
				fmt.Fprintf(w, "%s  %-13s %s  %s -> %s  %s\n",
					at.AttemptedAt.In(loc).Format("Jan 2 15:04"), at.AttemptType, at.BlockID,
					formatSpan(at.OldStart, at.OldEnd, loc), target, result)
			}
			return nil
		},
	}
}
