package main

import (
	"fmt"
	"strings"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/service"
	"github.com/spf13/cobra"
)

func newAssignmentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignment",
		Aliases: []string{"a"},
		Short:   "Manage assignments",
	}
	cmd.AddCommand(newAssignmentAddCmd(a), newAssignmentListCmd(a), newAssignmentRmCmd(a), newAssignmentEditCmd(a))
	return cmd
}

func newAssignmentAddCmd(a *app) *cobra.Command {
	var category, due string
	var minutes int
	var locked bool
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an assignment and schedule its study plan",
		Example: `  studyplan assignment add "Organic Chemistry Midterm" --category exam --due "2026-03-09 10:00" --minutes 240
  studyplan assignment add "Problem Set 4" -k homework -d 2026-03-06 -m 120`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			c, err := models.ParseCategory(category)
			if err != nil {
				return err
			}
			dueAt, err := a.parseWhen(due)
			if err != nil {
				return err
			}
			asg, out, err := svc.CreateAssignment(commandContext(cmd), service.AssignmentInput{
				Title:            strings.Join(args, " "),
				Category:         c,
				Due:              dueAt,
				EstimatedMinutes: minutes,
				Locked:           locked,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Added %q [%s]\n", asg.Title, asg.ID)
			printOutcome(w, out, a.location())
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "k", "", "exam, quiz, homework, practiceHomework, reading, review or project")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date, YYYY-MM-DD or \"YYYY-MM-DD HH:MM\"")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "estimated minutes of work")
	cmd.Flags().BoolVar(&locked, "locked", false, "freeze the plan once generated")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newAssignmentListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List assignments by due date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			list, err := svc.Assignments(commandContext(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(w, "No assignments.")
				return nil
			}
			heading(w, "ASSIGNMENTS")
			loc := a.location()
			for _, asg := range list {
				lock := ""
				if asg.Locked {
					lock = " (locked)"
				}
				fmt.Fprintf(w, "%s  %-16s %4dm  %s%s  [%s]\n",
					asg.Due.In(loc).Format("Mon Jan 2 15:04"), asg.Category, asg.EstimatedMinutes, asg.Title, lock, asg.ID)
			}
			return nil
		},
	}
}

func newAssignmentRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an assignment and archive its blocks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			archived, err := svc.DeleteAssignment(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s, archived %d blocks\n", args[0], len(archived))
			return nil
		},
	}
}

func newAssignmentEditCmd(a *app) *cobra.Command {
	var title, category, due string
	var minutes int
	var locked bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an assignment; the plan is regenerated when it is stale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			var patch service.AssignmentPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("category") {
				c, err := models.ParseCategory(category)
				if err != nil {
					return err
				}
				patch.Category = &c
			}
			if flags.Changed("due") {
				d, err := a.parseWhen(due)
				if err != nil {
					return err
				}
				patch.Due = &d
			}
			if flags.Changed("minutes") {
				patch.EstimatedMinutes = &minutes
			}
			if flags.Changed("locked") {
				patch.Locked = &locked
			}
			asg, out, err := svc.UpdateAssignment(commandContext(cmd), args[0], patch)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Updated %q [%s]\n", asg.Title, asg.ID)
			if len(out.Accepted)+len(out.Rejected) > 0 {
				printOutcome(w, out, a.location())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&category, "category", "k", "", "new category")
	cmd.Flags().StringVarP(&due, "due", "d", "", "new due date")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "new estimate in minutes")
	cmd.Flags().BoolVar(&locked, "locked", false, "freeze or unfreeze the plan")
	return cmd
}
