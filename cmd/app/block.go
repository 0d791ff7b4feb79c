package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/scheduler"
	"github.com/akyairhashvil/studyplan/internal/service"
	"github.com/spf13/cobra"
)

// errRejected signals that a change was refused by the scheduler. The
// rejection itself has already been printed.
var errRejected = errors.New("change rejected")

func newBlockCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "block",
		Aliases: []string{"b"},
		Short:   "Move, edit and complete scheduled blocks",
	}
	cmd.AddCommand(
		newBlockMoveCmd(a),
		newBlockEditCmd(a),
		newBlockAddCmd(a),
		newBlockDoneCmd(a),
		newBlockUndoCmd(a),
		newBlockRmCmd(a),
	)
	return cmd
}

func reportEdit(w io.Writer, out service.Outcome, a *app) error {
	if printOutcome(w, out, a.location()) > 0 {
		return errRejected
	}
	return nil
}

func newBlockMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <block-id> <start>",
		Short: "Move a block; the start snaps to the grid",
		Example: `  studyplan block move 3f2c... "2026-03-04 16:00"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			start, err := a.parseWhen(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			out, err := svc.MoveBlock(commandContext(cmd), args[0], start)
			if err != nil {
				return err
			}
			return reportEdit(cmd.OutOrStdout(), out, a)
		},
	}
}

func newBlockEditCmd(a *app) *cobra.Command {
	var title, start string
	var minutes int
	var locked bool
	cmd := &cobra.Command{
		Use:   "edit <block-id>",
		Short: "Change a block's title, start, length or lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			var edit scheduler.BlockEdit
			flags := cmd.Flags()
			if flags.Changed("title") {
				edit.Title = &title
			}
			if flags.Changed("start") {
				t, err := a.parseWhen(start)
				if err != nil {
					return err
				}
				edit.Start = &t
			}
			if flags.Changed("minutes") {
				d := time.Duration(minutes) * time.Minute
				edit.Duration = &d
			}
			if flags.Changed("locked") {
				edit.Locked = &locked
			}
			if edit == (scheduler.BlockEdit{}) {
				return fmt.Errorf("nothing to change; pass --title, --start, --minutes or --locked")
			}
			out, err := svc.EditBlock(commandContext(cmd), args[0], edit)
			if err != nil {
				return err
			}
			return reportEdit(cmd.OutOrStdout(), out, a)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&start, "start", "s", "", "new start time")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "new length in minutes")
	cmd.Flags().BoolVar(&locked, "locked", false, "pin the block in place")
	return cmd
}

func newBlockAddCmd(a *app) *cobra.Command {
	var start string
	var minutes int
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Place a manual study block",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			at, err := a.parseWhen(start)
			if err != nil {
				return err
			}
			out, err := svc.AddManualBlock(commandContext(cmd), strings.Join(args, " "), at, time.Duration(minutes)*time.Minute)
			if err != nil {
				return err
			}
			return reportEdit(cmd.OutOrStdout(), out, a)
		},
	}
	cmd.Flags().StringVarP(&start, "start", "s", "", "start time")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 60, "length in minutes")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

type blockTransition func(ctx context.Context, id string) (models.ScheduledBlock, error)

func newBlockTransitionCmd(a *app, use, short, verb string, fn func(*service.Service) blockTransition) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <block-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.open(cmd)
			if err != nil {
				return err
			}
			b, err := fn(svc)(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q [%s]\n", verb, b.Title, b.ID)
			return nil
		},
	}
}

func newBlockDoneCmd(a *app) *cobra.Command {
	return newBlockTransitionCmd(a, "done", "Mark a block completed", "Completed",
		func(s *service.Service) blockTransition { return s.CompleteBlock })
}

func newBlockUndoCmd(a *app) *cobra.Command {
	return newBlockTransitionCmd(a, "undo", "Return a completed block to pending", "Reopened",
		func(s *service.Service) blockTransition { return s.UncompleteBlock })
}

func newBlockRmCmd(a *app) *cobra.Command {
	return newBlockTransitionCmd(a, "rm", "Archive a block", "Archived",
		func(s *service.Service) blockTransition { return s.DeleteBlock })
}
