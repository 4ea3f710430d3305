// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/model"
)

// parseLevels maps a comma-separated level list to typed levels.
func parseLevels(s string) ([]model.LogLevel, error) {
	if s == "" {
		return nil, nil
	}
	var out []model.LogLevel
	for _, part := range strings.Split(s, ",") {
		lvl := model.LogLevel(strings.ToLower(strings.TrimSpace(part)))
		switch lvl {
		case model.LevelDebug, model.LevelInfo, model.LevelWarn, model.LevelError:
			out = append(out, lvl)
		default:
			return nil, fmt.Errorf("%s", i18n.T("cli.logs.bad_level", part))
		}
	}
	return out, nil
}

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Query and manage the helper's log files",
	}

	var levels string
	var pattern string
	var sinceHours int
	var limit int
	buildQuery := func() (model.LogQuery, error) {
		lvls, err := parseLevels(levels)
		if err != nil {
			return model.LogQuery{}, err
		}
		q := model.LogQuery{Levels: lvls, Pattern: pattern, Limit: limit}
		if sinceHours > 0 {
			q.Since = time.Now().Add(-time.Duration(sinceHours) * time.Hour)
		}
		return q, nil
	}

	query := &cobra.Command{
		Use:   "query",
		Short: "Print matching log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			q, err := buildQuery()
			if err != nil {
				return err
			}
			entries, err := b.Query(context.Background(), q)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s %-5s %-10s %s\n", e.Timestamp.Format(time.RFC3339), e.Level, e.Source, e.Message)
			}
			return nil
		},
	}

	export := &cobra.Command{
		Use:   "export <out-path>",
		Short: "Export matching log lines to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			q, err := buildQuery()
			if err != nil {
				return err
			}
			if err := b.ExportLogs(context.Background(), q, args[0]); err != nil {
				_ = db.LogAction("LOGS_EXPORT", args[0], "error")
				return err
			}
			_ = db.LogAction("LOGS_EXPORT", args[0], "ok")
			fmt.Println(i18n.T("cli.logs.exported", args[0]))
			return nil
		},
	}

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Apply the retention policy to the helper's log files",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := requireBackend()
			if err != nil {
				return err
			}
			res, err := b.Cleanup(context.Background())
			if err != nil {
				_ = db.LogAction("LOGS_CLEANUP", "", "error")
				return err
			}
			_ = db.LogAction("LOGS_CLEANUP", "", "ok")
			fmt.Println(i18n.T("cli.logs.cleaned", res.Removed, humanBytes(res.FreedBytes)))
			return nil
		},
	}

	for _, c := range []*cobra.Command{query, export} {
		c.Flags().StringVar(&levels, "levels", "", "Comma-separated levels (debug,info,warn,error)")
		c.Flags().StringVar(&pattern, "pattern", "", "Regular expression to match messages against")
		c.Flags().IntVar(&sinceHours, "since", 0, "Only lines from the last N hours")
		c.Flags().IntVar(&limit, "limit", 1000, "Maximum number of lines")
	}

	cmd.AddCommand(query, export, cleanup)
	return cmd
}
