package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/akyairhashvil/studyplan/internal/database"
	"github.com/akyairhashvil/studyplan/internal/util"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var encrypt bool
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write every assignment, block, event and attempt to a JSON vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(cmd); err != nil {
				return err
			}
			opts := database.ExportOptions{EncryptOutput: encrypt}
			if encrypt {
				pass, err := a.readPassphrase("Passphrase: ")
				if err != nil {
					return err
				}
				if err := util.ValidatePassphrase(pass); err != nil {
					return err
				}
				confirm, err := a.readPassphrase("Confirm passphrase: ")
				if err != nil {
					return err
				}
				if confirm != pass {
					return fmt.Errorf("passphrases do not match")
				}
				opts.Passphrase = pass
			}
			data, err := a.db.ExportVault(commandContext(cmd), opts)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "seal the export with a passphrase")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a vault export, replacing rows with matching IDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(cmd); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			ctx := commandContext(cmd)
			if a.db.HasData(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), "Merging into existing data; rows with matching IDs are replaced.")
			}
			summary, err := a.db.ImportVault(ctx, data, "")
			if errors.Is(err, database.ErrPassphraseMissing) {
				pass, perr := a.readPassphrase("Passphrase: ")
				if perr != nil {
					return perr
				}
				summary, err = a.db.ImportVault(ctx, data, pass)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d assignments, %d blocks, %d events, %d attempts\n",
				summary.Assignments, summary.Blocks, summary.Events, summary.Attempts)
			return nil
		},
	}
}
