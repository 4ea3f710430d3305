// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package native

import (
	"context"

	"github.com/devkeep/devkeep/internal/model"
)

// Cache domain operations. Operation names follow the helper's
// "<domain>.<op>" convention.

func (c *Client) DiscoverToolCaches(ctx context.Context) ([]model.ToolCache, error) {
	var out []model.ToolCache
	if err := c.invoke(ctx, "cache.discover", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListEntries(ctx context.Context, q model.CacheQuery) (*model.CachePage, error) {
	var out model.CachePage
	if err := c.invoke(ctx, "cache.list", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Clean(ctx context.Context, name string) (*model.CleanResult, error) {
	var out model.CleanResult
	req := struct {
		Name string `json:"name"`
	}{name}
	if err := c.invoke(ctx, "cache.clean", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CleanAll(ctx context.Context) (*model.CleanResult, error) {
	var out model.CleanResult
	if err := c.invoke(ctx, "cache.clean_all", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Verify(ctx context.Context, name string) (*model.VerifyResult, error) {
	var out model.VerifyResult
	req := struct {
		Name string `json:"name"`
	}{name}
	if err := c.invoke(ctx, "cache.verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	req := struct {
		ID string `json:"id"`
	}{id}
	return c.invoke(ctx, "cache.delete", req, nil)
}

func (c *Client) DeleteEntries(ctx context.Context, ids []string) (*model.BatchResult, error) {
	var out model.BatchResult
	req := struct {
		IDs []string `json:"ids"`
	}{ids}
	if err := c.invoke(ctx, "cache.delete_batch", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
