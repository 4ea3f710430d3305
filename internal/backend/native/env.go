// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package native

import (
	"context"

	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/model"
)

// Environment domain operations.

func (c *Client) ListTypes(ctx context.Context) ([]model.EnvType, error) {
	var out []model.EnvType
	if err := c.invoke(ctx, "env.types", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListProviders(ctx context.Context, envType string) ([]model.EnvProvider, error) {
	var out []model.EnvProvider
	req := struct {
		EnvType string `json:"env_type"`
	}{envType}
	if err := c.invoke(ctx, "env.providers", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListVersions(ctx context.Context, envType string) ([]model.EnvVersion, error) {
	var out []model.EnvVersion
	req := struct {
		EnvType string `json:"env_type"`
	}{envType}
	if err := c.invoke(ctx, "env.versions", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Install streams progress events while the helper downloads and installs
// the requested version. The returned token can be passed to CancelInstall
// from another goroutine.
func (c *Client) Install(ctx context.Context, envType, version string, fn backend.ProgressFunc) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	req := struct {
		EnvType string `json:"env_type"`
		Version string `json:"version"`
	}{envType, version}
	if err := c.stream(ctx, "env.install", req, fn, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) CancelInstall(ctx context.Context, token string) error {
	req := struct {
		Token string `json:"token"`
	}{token}
	return c.invoke(ctx, "env.cancel_install", req, nil)
}

func (c *Client) Uninstall(ctx context.Context, envType, version string) error {
	req := struct {
		EnvType string `json:"env_type"`
		Version string `json:"version"`
	}{envType, version}
	return c.invoke(ctx, "env.uninstall", req, nil)
}

func (c *Client) SetGlobal(ctx context.Context, envType, version string) error {
	req := struct {
		EnvType string `json:"env_type"`
		Version string `json:"version"`
	}{envType, version}
	return c.invoke(ctx, "env.set_global", req, nil)
}

func (c *Client) SetLocal(ctx context.Context, envType, version, dir string) error {
	req := struct {
		EnvType string `json:"env_type"`
		Version string `json:"version"`
		Dir     string `json:"dir"`
	}{envType, version, dir}
	return c.invoke(ctx, "env.set_local", req, nil)
}

func (c *Client) DetectProject(ctx context.Context, dir string) ([]model.DetectedVersion, error) {
	var out []model.DetectedVersion
	req := struct {
		Dir string `json:"dir"`
	}{dir}
	if err := c.invoke(ctx, "env.detect", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) VerifyInstall(ctx context.Context, envType, version string) (*model.VerifyResult, error) {
	var out model.VerifyResult
	req := struct {
		EnvType string `json:"env_type"`
		Version string `json:"version"`
	}{envType, version}
	if err := c.invoke(ctx, "env.verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
