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
)

func newCachesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caches",
		Short: "Inspect and clean developer tool caches",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List discovered tool caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			caches, err := b.DiscoverToolCaches(context.Background())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, i18n.T("cli.caches.header"))
			var total int64
			for _, c := range caches {
				total += c.SizeBytes
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", c.Name, c.Tool, c.EntryCount, humanBytes(c.SizeBytes), c.Path)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println(i18n.T("cli.caches.total", len(caches), humanBytes(total)))
			return nil
		},
	}

	var cleanAll bool
	var yes bool
	clean := &cobra.Command{
		Use:   "clean [cache-name]",
		Short: "Clean one tool cache, or all of them with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			if !cleanAll && len(args) != 1 {
				return fmt.Errorf("%s", i18n.T("cli.caches.clean_usage"))
			}
			target := i18n.T("cli.caches.all_caches")
			if !cleanAll {
				target = args[0]
			}
			if !yes {
				if promptForConfirmation(i18n.T("cli.caches.clean_confirm", target)) != "y" {
					fmt.Println(i18n.T("cli.aborted"))
					return nil
				}
			}
			if cleanAll {
				r, err := b.CleanAll(context.Background())
				if err != nil {
					_ = db.LogAction("CLEAN_CACHE", target, "error")
					return err
				}
				_ = db.LogAction("CLEAN_CACHE", target, "ok")
				fmt.Println(i18n.T("cli.caches.cleaned", r.Removed, humanBytes(r.FreedBytes)))
				return nil
			}
			r, err := b.Clean(context.Background(), target)
			if err != nil {
				_ = db.LogAction("CLEAN_CACHE", target, "error")
				return err
			}
			_ = db.LogAction("CLEAN_CACHE", target, "ok")
			fmt.Println(i18n.T("cli.caches.cleaned", r.Removed, humanBytes(r.FreedBytes)))
			return nil
		},
	}
	clean.Flags().BoolVar(&cleanAll, "all", false, "Clean every discovered cache")
	clean.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	verify := &cobra.Command{
		Use:   "verify <cache-name>",
		Short: "Verify the integrity of a tool cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			r, err := b.Verify(context.Background(), args[0])
			if err != nil {
				_ = db.LogAction("VERIFY_CACHE", args[0], "error")
				return err
			}
			_ = db.LogAction("VERIFY_CACHE", args[0], "ok")
			fmt.Println(i18n.T("cli.caches.verified", r.Checked, r.Corrupt, r.Repaired))
			return nil
		},
	}

	cmd.AddCommand(list, clean, verify)
	return cmd
}
