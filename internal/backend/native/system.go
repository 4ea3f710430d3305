// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package native

import (
	"context"

	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/model"
)

// Cross-cutting operations: self-update, platform info, feedback, backups
// and diagnostics.

func (c *Client) CheckUpdate(ctx context.Context) (*model.UpdateInfo, error) {
	var out model.UpdateInfo
	if err := c.invoke(ctx, "system.check_update", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApplyUpdate(ctx context.Context, fn backend.ProgressFunc) error {
	return c.stream(ctx, "system.apply_update", nil, fn, nil)
}

func (c *Client) PlatformInfo(ctx context.Context) (*model.PlatformInfo, error) {
	var out model.PlatformInfo
	if err := c.invoke(ctx, "system.platform", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitFeedback(ctx context.Context, fb model.Feedback) error {
	return c.invoke(ctx, "system.feedback", fb, nil)
}

func (c *Client) CreateBackup(ctx context.Context, outPath string) (*model.BackupManifest, error) {
	var out model.BackupManifest
	req := struct {
		Out string `json:"out"`
	}{outPath}
	if err := c.invoke(ctx, "backup.create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RestoreBackup(ctx context.Context, path string) error {
	req := struct {
		Path string `json:"path"`
	}{path}
	return c.invoke(ctx, "backup.restore", req, nil)
}

func (c *Client) ListBackups(ctx context.Context) ([]model.BackupManifest, error) {
	var out []model.BackupManifest
	if err := c.invoke(ctx, "backup.list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ValidateBackup(ctx context.Context, path string) (*model.BackupManifest, error) {
	var out model.BackupManifest
	req := struct {
		Path string `json:"path"`
	}{path}
	if err := c.invoke(ctx, "backup.validate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CleanupBackups(ctx context.Context, keep int) (*model.CleanResult, error) {
	var out model.CleanResult
	req := struct {
		Keep int `json:"keep"`
	}{keep}
	if err := c.invoke(ctx, "backup.cleanup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ExportDiagnostics(ctx context.Context, outPath string) error {
	req := struct {
		Out string `json:"out"`
	}{outPath}
	return c.invoke(ctx, "system.diagnostics", req, nil)
}
