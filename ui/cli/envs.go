// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
)

func newEnvsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envs",
		Short: "Manage language and runtime environments",
	}

	list := &cobra.Command{
		Use:   "list [env-type]",
		Short: "List environment types, or the versions of one type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			ctx := context.Background()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			if len(args) == 0 {
				types, err := b.ListTypes(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, i18n.T("cli.envs.types_header"))
				for _, t := range types {
					fmt.Fprintf(w, "%s\t%s\t%d\n", t.Name, t.Display, t.Installed)
				}
				return w.Flush()
			}
			versions, err := b.ListVersions(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(w, i18n.T("cli.envs.versions_header"))
			for _, v := range versions {
				installed, global := "", ""
				if v.Installed {
					installed = "*"
				}
				if v.Global {
					global = i18n.T("cli.envs.global_mark")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Version, v.Provider, installed, global)
			}
			return w.Flush()
		},
	}

	install := &cobra.Command{
		Use:   "install <env-type> <version>",
		Short: "Install an environment version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			spec := args[0] + "@" + args[1]
			fmt.Println(i18n.T("cli.envs.installing", spec))
			_, err = b.Install(context.Background(), args[0], args[1], func(p model.Progress) {
				fmt.Printf("\r%-20s %5.1f%% %s", p.Stage, p.Percent, p.Detail)
			})
			fmt.Println()
			if err != nil {
				_ = db.LogAction("INSTALL_ENV", spec, "error")
				return err
			}
			_ = db.LogAction("INSTALL_ENV", spec, "ok")
			fmt.Println(i18n.T("cli.envs.installed", spec))
			return nil
		},
	}

	uninstall := &cobra.Command{
		Use:   "uninstall <env-type> <version>",
		Short: "Remove an installed environment version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			spec := args[0] + "@" + args[1]
			if promptForConfirmation(i18n.T("cli.envs.uninstall_confirm", spec)) != "y" {
				fmt.Println(i18n.T("cli.aborted"))
				return nil
			}
			if err := b.Uninstall(context.Background(), args[0], args[1]); err != nil {
				_ = db.LogAction("UNINSTALL_ENV", spec, "error")
				return err
			}
			_ = db.LogAction("UNINSTALL_ENV", spec, "ok")
			fmt.Println(i18n.T("cli.envs.uninstalled", spec))
			return nil
		},
	}

	var local bool
	use := &cobra.Command{
		Use:   "use <env-type> <version>",
		Short: "Activate a version globally, or for the current directory with --local",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			spec := args[0] + "@" + args[1]
			ctx := context.Background()
			if local {
				dir, err := os.Getwd()
				if err != nil {
					return err
				}
				if err := b.SetLocal(ctx, args[0], args[1], dir); err != nil {
					_ = db.LogAction("SET_LOCAL_ENV", spec, "error")
					return err
				}
				_ = db.LogAction("SET_LOCAL_ENV", spec, "ok")
				fmt.Println(i18n.T("cli.envs.set_local", spec, dir))
				return nil
			}
			if err := b.SetGlobal(ctx, args[0], args[1]); err != nil {
				_ = db.LogAction("SET_GLOBAL_ENV", spec, "error")
				return err
			}
			_ = db.LogAction("SET_GLOBAL_ENV", spec, "ok")
			fmt.Println(i18n.T("cli.envs.set_global", spec))
			return nil
		},
	}
	use.Flags().BoolVar(&local, "local", false, "Pin the version for the current directory only")

	detect := &cobra.Command{
		Use:   "detect",
		Short: "Detect version requirements in the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			found, err := b.DetectProject(context.Background(), dir)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Println(i18n.T("cli.envs.nothing_detected"))
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, i18n.T("cli.envs.detected_header"))
			for _, d := range found {
				ok := "✗"
				if d.Satisfied {
					ok = "✓"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.EnvType, d.Constraint, d.Source, ok)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(list, install, uninstall, use, detect)
	return cmd
}
