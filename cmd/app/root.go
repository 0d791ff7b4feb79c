package main

import (
	"fmt"

	"github.com/akyairhashvil/studyplan/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "studyplan",
		Short: "Turn assignments into a conflict-free study schedule",
		Long: `studyplan breaks assignments into study sessions by category and places
them on your calendar inside working hours, before each due date, without
overlapping each other or your busy time.

Run without a subcommand to open the dashboard.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(a, cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/studyplan/config.yaml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (default is $XDG_DATA_HOME/studyplan/studyplan.db)")

	root.AddCommand(
		newAssignmentCmd(a),
		newPlanCmd(a),
		newScheduleCmd(a),
		newRefreshCmd(a),
		newRegenerateCmd(a),
		newBlockCmd(a),
		newEventCmd(a),
		newAttemptsCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newReportCmd(a),
		newConfigCmd(a),
	)
	return root
}

func runDashboard(a *app, cmd *cobra.Command) error {
	svc, err := a.open(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	if _, err := svc.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh schedule: %w", err)
	}
	model := tui.New(ctx, svc, tui.Options{
		Location:    a.location(),
		Now:         a.now,
		Theme:       a.settings.UI.Theme,
		WriteReport: a.writeReport(""),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
