// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/remote"
)

// remoteFromConfig returns the configured SFTP remote or an error when the
// remote section is empty.
func remoteFromConfig() (config.RemoteConfig, error) {
	rc := config.Current().Remote
	if rc.Host == "" {
		return rc, fmt.Errorf("%s", i18n.T("cli.backup.no_remote"))
	}
	return rc, nil
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, validate and transfer Devkeep backups",
	}

	create := &cobra.Command{
		Use:   "create [output-file]",
		Short: "Create a backup archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			outPath := ""
			if len(args) == 1 {
				outPath = args[0]
			} else {
				dir, derr := config.DataDir()
				if derr != nil {
					return derr
				}
				outPath = filepath.Join(dir, fmt.Sprintf("devkeep-backup-%s.tar.zst", time.Now().Format("2006-01-02-150405")))
			}
			manifest, err := b.CreateBackup(context.Background(), outPath)
			if err != nil {
				_ = db.LogAction("BACKUP_CREATE", outPath, "error")
				return err
			}
			if manifest != nil {
				_ = db.SaveBackupManifest(*manifest)
			}
			_ = db.LogAction("BACKUP_CREATE", outPath, "ok")
			fmt.Println(i18n.T("cli.backup.created", outPath))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List known backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			backups, err := b.ListBackups(context.Background())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, i18n.T("cli.backup.header"))
			for _, bk := range backups {
				valid := "✗"
				if bk.Valid {
					valid = "✓"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", bk.CreatedAt.Format("2006-01-02 15:04"), humanBytes(bk.SizeBytes), valid, bk.Path)
			}
			return w.Flush()
		},
	}

	validate := &cobra.Command{
		Use:   "validate <backup-file>",
		Short: "Validate a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			manifest, err := b.ValidateBackup(context.Background(), args[0])
			if err != nil {
				return err
			}
			if manifest != nil {
				_ = db.SaveBackupManifest(*manifest)
			}
			if manifest != nil && manifest.Valid {
				fmt.Println(i18n.T("cli.backup.valid", args[0]))
				return nil
			}
			return fmt.Errorf("%s", i18n.T("cli.backup.invalid", args[0]))
		},
	}

	var yes bool
	restore := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			if !yes {
				if promptForConfirmation(i18n.T("cli.backup.restore_confirm", args[0])) != "y" {
					fmt.Println(i18n.T("cli.aborted"))
					return nil
				}
			}
			if err := b.RestoreBackup(context.Background(), args[0]); err != nil {
				_ = db.LogAction("BACKUP_RESTORE", args[0], "error")
				return err
			}
			_ = db.LogAction("BACKUP_RESTORE", args[0], "ok")
			fmt.Println(i18n.T("cli.backup.restored", args[0]))
			return nil
		},
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	var keep int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old backups, keeping the most recent ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			res, err := b.CleanupBackups(context.Background(), keep)
			if err != nil {
				_ = db.LogAction("BACKUP_CLEANUP", "", "error")
				return err
			}
			_ = db.LogAction("BACKUP_CLEANUP", fmt.Sprintf("keep=%d", keep), "ok")
			fmt.Println(i18n.T("cli.backup.cleaned", res.Removed, humanBytes(res.FreedBytes)))
			return nil
		},
	}
	cleanup.Flags().IntVar(&keep, "keep", 5, "Number of newest backups to keep")

	push := &cobra.Command{
		Use:   "push <backup-file>",
		Short: "Upload a backup to the configured SFTP remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := remoteFromConfig()
			if err != nil {
				return err
			}
			client, err := remote.Dial(rc.Host, rc.User, rc.KeyFile)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := client.Push(args[0], rc.Dir); err != nil {
				_ = db.LogAction("BACKUP_PUSH", args[0], "error")
				return err
			}
			_ = db.LogAction("BACKUP_PUSH", args[0], "ok")
			fmt.Println(i18n.T("cli.backup.pushed", filepath.Base(args[0]), rc.Host))
			return nil
		},
	}

	pull := &cobra.Command{
		Use:   "pull <remote-name> [local-path]",
		Short: "Download a backup from the configured SFTP remote",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := remoteFromConfig()
			if err != nil {
				return err
			}
			localPath := ""
			if len(args) == 2 {
				localPath = args[1]
			} else {
				dir, derr := config.DataDir()
				if derr != nil {
					return derr
				}
				localPath = filepath.Join(dir, args[0])
			}
			client, err := remote.Dial(rc.Host, rc.User, rc.KeyFile)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := client.Pull(rc.Dir, args[0], localPath); err != nil {
				_ = db.LogAction("BACKUP_PULL", args[0], "error")
				return err
			}
			_ = db.LogAction("BACKUP_PULL", args[0], "ok")
			fmt.Println(i18n.T("cli.backup.pulled", args[0], localPath))
			return nil
		},
	}

	trustHost := &cobra.Command{
		Use:   "trust-host [host]",
		Short: "Fetch and pin the SFTP remote's host key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := ""
			if len(args) == 1 {
				host = args[0]
			} else {
				rc, err := remoteFromConfig()
				if err != nil {
					return err
				}
				host = rc.Host
			}
			key, err := remote.FetchHostKey(host)
			if err != nil {
				return err
			}
			fmt.Println(i18n.T("cli.backup.host_key", host, key))
			if promptForConfirmation(i18n.T("cli.backup.trust_confirm")) != "y" {
				fmt.Println(i18n.T("cli.aborted"))
				return nil
			}
			if err := db.AddKnownHostKey(host, key); err != nil {
				_ = db.LogAction("BACKUP_TRUST", host, "error")
				return err
			}
			_ = db.LogAction("BACKUP_TRUST", host, "ok")
			fmt.Println(i18n.T("cli.backup.trusted", host))
			return nil
		},
	}

	cmd.AddCommand(create, list, validate, restore, cleanup, push, pull, trustHost)
	return cmd
}
