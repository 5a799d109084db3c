package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/faizmokh/bridgelog/internal/files"
	"github.com/faizmokh/bridgelog/internal/logbook"
)

func newBackupCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the whole ledger as a JSON backup.",
	}

	cmd.AddCommand(
		newBackupExportCommand(ctx, a),
		newBackupImportCommand(ctx, a),
	)

	return cmd
}

func newBackupExportCommand(ctx context.Context, a *app) *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup file (use --out - for stdout).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(ctx, cmd, func(s *session) error {
				now := a.now()
				data, err := logbook.EncodeBackup(s.ctrl.State(), now)
				if err != nil {
					return err
				}
				if outFlag == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}

				path := outFlag
				if path == "" {
					path = logbook.BackupFileName(now)
				} else if info, err := os.Stat(path); err == nil && info.IsDir() {
					path = filepath.Join(path, logbook.BackupFileName(now))
				}
				if err := files.WriteFileAtomic(path, data); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outFlag, "out", "", "File or directory to write (default: bridge-log-backup-<stamp>.json)")

	return cmd
}

func newBackupImportCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the ledger with the contents of a backup file.",
		Long:  "import accepts current backups, legacy backups and bare ledger objects. Missing fields are filled with defaults.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.with(ctx, cmd, func(s *session) error {
				restored, err := logbook.DecodeBackup(data, a.now())
				if err != nil {
					return err
				}
				next, err := s.ctrl.Apply("restore", func(logbook.State) (logbook.State, error) {
					return restored, nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restore complete: %d entries, %d archived days (live day %s)\n",
					len(next.Log), len(next.History), next.Daily.Date)
				return nil
			})
		},
	}

	return cmd
}
