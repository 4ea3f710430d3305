// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
)

func newWslCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wsl",
		Short: "Inspect and control WSL distributions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List WSL distributions",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			distros, err := b.ListDistros(context.Background())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, i18n.T("cli.wsl.header"))
			for _, d := range distros {
				def := ""
				if d.Default {
					def = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Name, d.State, d.Version, def)
			}
			return w.Flush()
		},
	}

	exec := &cobra.Command{
		Use:   "exec <distro> <command...>",
		Short: "Run a command inside a distribution",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			command := strings.Join(args[1:], " ")
			res, err := b.Exec(context.Background(), args[0], command)
			if err != nil {
				return err
			}
			if res.Stdout != "" {
				fmt.Print(res.Stdout)
			}
			if res.Stderr != "" {
				fmt.Fprint(os.Stderr, res.Stderr)
			}
			if res.ExitCode != 0 {
				return fmt.Errorf("%s", i18n.T("cli.wsl.exec_exit", res.ExitCode))
			}
			return nil
		},
	}

	export := &cobra.Command{
		Use:   "export <distro> <tar-path>",
		Short: "Export a distribution to a tar archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			if err := b.ExportDistro(context.Background(), args[0], args[1]); err != nil {
				_ = db.LogAction("WSL_EXPORT", args[0], "error")
				return err
			}
			_ = db.LogAction("WSL_EXPORT", args[0], "ok")
			fmt.Println(i18n.T("cli.wsl.exported", args[0], args[1]))
			return nil
		},
	}

	var installDir string
	importCmd := &cobra.Command{
		Use:   "import <name> <tar-path>",
		Short: "Import a distribution from a tar archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			if err := b.Import(context.Background(), args[0], args[1], installDir); err != nil {
				_ = db.LogAction("WSL_IMPORT", args[0], "error")
				return err
			}
			_ = db.LogAction("WSL_IMPORT", args[0], "ok")
			fmt.Println(i18n.T("cli.wsl.imported", args[0]))
			return nil
		},
	}
	importCmd.Flags().StringVar(&installDir, "install-dir", "", "Directory to place the imported distro's disk in")

	mount := &cobra.Command{
		Use:   "mount <distro> <vhd-path>",
		Short: "Attach a VHD to a distribution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			if err := b.MountDisk(context.Background(), args[0], args[1]); err != nil {
				_ = db.LogAction("WSL_MOUNT", args[0], "error")
				return err
			}
			_ = db.LogAction("WSL_MOUNT", args[0], "ok")
			fmt.Println(i18n.T("cli.wsl.mounted", args[1], args[0]))
			return nil
		},
	}

	resize := &cobra.Command{
		Use:   "resize <distro> <size-gb>",
		Short: "Resize a distribution's virtual disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			sizeGB, err := strconv.Atoi(args[1])
			if err != nil || sizeGB <= 0 {
				return fmt.Errorf("%s", i18n.T("cli.wsl.bad_size", args[1]))
			}
			if err := b.ResizeDisk(context.Background(), args[0], sizeGB); err != nil {
				_ = db.LogAction("WSL_RESIZE", args[0], "error")
				return err
			}
			_ = db.LogAction("WSL_RESIZE", args[0], "ok")
			fmt.Println(i18n.T("cli.wsl.resized", args[0], sizeGB))
			return nil
		},
	}

	setUser := &cobra.Command{
		Use:   "set-user <distro> <user>",
		Short: "Set a distribution's default user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			if err := b.SetDefaultUser(context.Background(), args[0], args[1]); err != nil {
				_ = db.LogAction("WSL_SET_USER", args[0], "error")
				return err
			}
			_ = db.LogAction("WSL_SET_USER", args[0], "ok")
			fmt.Println(i18n.T("cli.wsl.user_set", args[0], args[1]))
			return nil
		},
	}

	cmd.AddCommand(list, exec, export, importCmd, mount, resize, setUser)
	return cmd
}
