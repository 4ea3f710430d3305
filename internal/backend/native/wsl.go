// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package native

import (
	"context"

	"github.com/devkeep/devkeep/internal/model"
)

// WSL domain operations.

// distroReq is the common single-distro request body.
type distroReq struct {
	Name string `json:"name"`
}

func (c *Client) ListDistros(ctx context.Context) ([]model.Distro, error) {
	var out []model.Distro
	if err := c.invoke(ctx, "wsl.list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Resources(ctx context.Context, name string) (*model.DistroResources, error) {
	var out model.DistroResources
	if err := c.invoke(ctx, "wsl.resources", distroReq{name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Environment(ctx context.Context, name string) ([]model.EnvPair, error) {
	var out []model.EnvPair
	if err := c.invoke(ctx, "wsl.environment", distroReq{name}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Exec(ctx context.Context, name, command string) (*model.ExecResult, error) {
	var out model.ExecResult
	req := struct {
		Name    string `json:"name"`
		Command string `json:"command"`
	}{name, command}
	if err := c.invoke(ctx, "wsl.exec", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MountDisk(ctx context.Context, name, vhdPath string) error {
	req := struct {
		Name string `json:"name"`
		Vhd  string `json:"vhd"`
	}{name, vhdPath}
	return c.invoke(ctx, "wsl.mount", req, nil)
}

func (c *Client) ResizeDisk(ctx context.Context, name string, sizeGB int) error {
	req := struct {
		Name   string `json:"name"`
		SizeGB int    `json:"size_gb"`
	}{name, sizeGB}
	return c.invoke(ctx, "wsl.resize", req, nil)
}

func (c *Client) Import(ctx context.Context, name, tarPath, installDir string) error {
	req := struct {
		Name       string `json:"name"`
		Tar        string `json:"tar"`
		InstallDir string `json:"install_dir"`
	}{name, tarPath, installDir}
	return c.invoke(ctx, "wsl.import", req, nil)
}

func (c *Client) ExportDistro(ctx context.Context, name, tarPath string) error {
	req := struct {
		Name string `json:"name"`
		Tar  string `json:"tar"`
	}{name, tarPath}
	return c.invoke(ctx, "wsl.export", req, nil)
}

func (c *Client) SetDefaultUser(ctx context.Context, name, user string) error {
	req := struct {
		Name string `json:"name"`
		User string `json:"user"`
	}{name, user}
	return c.invoke(ctx, "wsl.set_default_user", req, nil)
}

func (c *Client) Services(ctx context.Context, name string) ([]model.SystemdService, error) {
	var out []model.SystemdService
	if err := c.invoke(ctx, "wsl.services", distroReq{name}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StartService(ctx context.Context, name, unit string) error {
	return c.serviceOp(ctx, "wsl.service_start", name, unit, false)
}

func (c *Client) StopService(ctx context.Context, name, unit string) error {
	return c.serviceOp(ctx, "wsl.service_stop", name, unit, false)
}

func (c *Client) EnableService(ctx context.Context, name, unit string, enable bool) error {
	return c.serviceOp(ctx, "wsl.service_enable", name, unit, enable)
}

func (c *Client) serviceOp(ctx context.Context, op, name, unit string, enable bool) error {
	req := struct {
		Name   string `json:"name"`
		Unit   string `json:"unit"`
		Enable bool   `json:"enable,omitempty"`
	}{name, unit, enable}
	return c.invoke(ctx, op, req, nil)
}
