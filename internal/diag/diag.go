// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package diag builds and exports diagnostics bundles: a zstd-compressed
// JSON snapshot of the running configuration, platform info, the session
// log, and recent action log rows. Bundles are built entirely client-side
// so they can be exported even when the native helper is down.
package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/logging"
	"github.com/devkeep/devkeep/internal/model"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// bundleVersion is bumped when the bundle layout changes.
const bundleVersion = 1

// Bundle is the diagnostics snapshot written to disk.
type Bundle struct {
	Version    int                    `json:"version"`
	ID         string                 `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	Config     config.Config          `json:"config"`
	Platform   *model.PlatformInfo    `json:"platform,omitempty"`
	SessionLog []string               `json:"session_log"`
	ActionLog  []model.ActionLogEntry `json:"action_log"`
}

// actionLogLimit bounds how many recent action log rows a bundle carries.
const actionLogLimit = 200

// Collect assembles a diagnostics bundle. Platform info comes from the
// backend when it is reachable; a down helper degrades the bundle instead
// of failing it. Secrets (DSN credentials, remote key paths) are redacted.
func Collect(ctx context.Context, b backend.Backend, cfg config.Config, sessionLines []string, actionLog []model.ActionLogEntry) *Bundle {
	bundle := &Bundle{
		Version:    bundleVersion,
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Config:     redactConfig(cfg),
		SessionLog: sessionLines,
		ActionLog:  actionLog,
	}
	if len(bundle.ActionLog) > actionLogLimit {
		bundle.ActionLog = bundle.ActionLog[:actionLogLimit]
	}
	if b != nil && b.Available() {
		info, err := b.PlatformInfo(ctx)
		if err != nil {
			logging.Warnf("diag: platform info unavailable: %v", err)
		} else {
			bundle.Platform = info
		}
	}
	return bundle
}

// redactConfig strips secrets that must never leave the machine in a
// diagnostics bundle.
func redactConfig(cfg config.Config) config.Config {
	if cfg.DSN != "" {
		cfg.DSN = "<redacted>"
	}
	if cfg.Remote.KeyFile != "" {
		cfg.Remote.KeyFile = "<redacted>"
	}
	return cfg
}

// Write streams the bundle as zstd-compressed JSON to w.
func Write(bundle *Bundle, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode bundle: %w", err)
	}
	return zw.Close()
}

// Read decodes a bundle previously written with Write.
func Read(r io.Reader) (*Bundle, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var bundle Bundle
	if err := json.NewDecoder(zr).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("could not decode bundle: %w", err)
	}
	return &bundle, nil
}

// Export writes the bundle to path, creating the file. An empty path picks
// a dated default name in the current directory and the chosen path is
// returned either way.
func Export(bundle *Bundle, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("devkeep-diagnostics-%s.json.zst", bundle.CreatedAt.Format("2006-01-02"))
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := Write(bundle, f); err != nil {
		return "", err
	}
	return path, nil
}
