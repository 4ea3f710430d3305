// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/diag"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/devkeep/devkeep/internal/state"
)

func newDiagCmd() *cobra.Command {
	var helperSide bool
	var outPath string
	cmd := &cobra.Command{
		Use:   "diag",
		Short: "Export a diagnostics bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			if helperSide {
				b, err := requireBackend()
				if err != nil {
					return err
				}
				if err := b.ExportDiagnostics(context.Background(), outPath); err != nil {
					_ = db.LogAction("EXPORT_DIAGNOSTICS", outPath, "error")
					return err
				}
				_ = db.LogAction("EXPORT_DIAGNOSTICS", outPath, "ok")
				fmt.Println(i18n.T("cli.diag.helper_exported", outPath))
				return nil
			}
			actionLog, err := db.GetActionLog(0)
			if err != nil {
				actionLog = nil
			}
			bundle := diag.Collect(context.Background(), backend.Default(), config.Current(), state.SessionLog.Lines(), actionLog)
			path, err := diag.Export(bundle, outPath)
			if err != nil {
				_ = db.LogAction("EXPORT_DIAGNOSTICS", "", "error")
				return err
			}
			_ = db.LogAction("EXPORT_DIAGNOSTICS", path, "ok")
			fmt.Println(i18n.T("cli.diag.exported", path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&helperSide, "helper", false, "Ask the helper to write its own diagnostics bundle")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path for the bundle")
	return cmd
}

func newFeedbackCmd() *cobra.Command {
	var category string
	var contact string
	var flush bool
	cmd := &cobra.Command{
		Use:   "feedback [message]",
		Short: "Send feedback, or flush the offline queue with --flush",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flush {
				return flushFeedbackQueue()
			}
			if len(args) != 1 {
				return fmt.Errorf("%s", i18n.T("cli.feedback.usage"))
			}
			fb := model.Feedback{
				ID:       uuid.NewString(),
				Category: category,
				Message:  args[0],
				Contact:  contact,
			}
			b := backend.Default()
			if b != nil && b.Available() {
				if err := b.SubmitFeedback(context.Background(), fb); err == nil {
					_ = db.LogAction("SUBMIT_FEEDBACK", fb.Category, "ok")
					fmt.Println(i18n.T("cli.feedback.sent"))
					return nil
				}
			}
			if err := db.EnqueueFeedback(fb); err != nil {
				_ = db.LogAction("SUBMIT_FEEDBACK", fb.Category, "error")
				return err
			}
			_ = db.LogAction("QUEUE_FEEDBACK", fb.Category, "ok")
			fmt.Println(i18n.T("cli.feedback.queued"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "other", "Category (bug, feature, performance, other)")
	cmd.Flags().StringVar(&contact, "contact", "", "Optional contact address")
	cmd.Flags().BoolVar(&flush, "flush", false, "Retry queued feedback submissions")
	return cmd
}

func flushFeedbackQueue() error {
	b, err := requireBackend()
	if err != nil {
		return err
	}
	pending, err := db.PendingFeedback()
	if err != nil {
		return err
	}
	sent := 0
	for _, fb := range pending {
		if err := b.SubmitFeedback(context.Background(), fb); err != nil {
			break
		}
		if err := db.DeleteFeedback(fb.ID); err != nil {
			break
		}
		sent++
	}
	_ = db.LogAction("FLUSH_FEEDBACK", fmt.Sprintf("sent=%d left=%d", sent, len(pending)-sent), "ok")
	fmt.Println(i18n.T("cli.feedback.flushed", sent, len(pending)-sent))
	return nil
}

func newUpdateCmd() *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for helper updates, and apply with --apply",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			ctx := context.Background()
			info, err := b.CheckUpdate(ctx)
			if err != nil {
				return err
			}
			if !info.Available {
				fmt.Println(i18n.T("cli.update.up_to_date", info.CurrentVersion))
				return nil
			}
			fmt.Println(i18n.T("cli.update.available", info.CurrentVersion, info.LatestVersion))
			if info.ReleaseNotes != "" {
				fmt.Println(info.ReleaseNotes)
			}
			if !apply {
				fmt.Println(i18n.T("cli.update.hint"))
				return nil
			}
			err = b.ApplyUpdate(ctx, func(p model.Progress) {
				fmt.Printf("\r%-20s %5.1f%%", p.Stage, p.Percent)
			})
			fmt.Println()
			if err != nil {
				_ = db.LogAction("APPLY_UPDATE", info.LatestVersion, "error")
				return err
			}
			_ = db.LogAction("APPLY_UPDATE", info.LatestVersion, "ok")
			fmt.Println(i18n.T("cli.update.applied", info.LatestVersion))
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Download and apply the update")
	return cmd
}
