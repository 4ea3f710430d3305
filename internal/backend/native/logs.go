// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package native

import (
	"context"

	"github.com/devkeep/devkeep/internal/model"
)

// Logs domain operations.

func (c *Client) Query(ctx context.Context, q model.LogQuery) ([]model.LogEntry, error) {
	var out []model.LogEntry
	if err := c.invoke(ctx, "logs.query", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ExportLogs(ctx context.Context, q model.LogQuery, outPath string) error {
	req := struct {
		Query model.LogQuery `json:"query"`
		Out   string         `json:"out"`
	}{q, outPath}
	return c.invoke(ctx, "logs.export", req, nil)
}

func (c *Client) RetentionPolicy(ctx context.Context) (*model.RetentionPolicy, error) {
	var out model.RetentionPolicy
	if err := c.invoke(ctx, "logs.retention", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetRetentionPolicy(ctx context.Context, p model.RetentionPolicy) error {
	return c.invoke(ctx, "logs.set_retention", p, nil)
}

func (c *Client) Cleanup(ctx context.Context) (*model.CleanResult, error) {
	var out model.CleanResult
	if err := c.invoke(ctx, "logs.cleanup", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
