package client

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/chathub/internal/aimodel"
	"github.com/frahmantamala/chathub/internal/auth"
	"github.com/frahmantamala/chathub/internal/dashboard"
	"github.com/frahmantamala/chathub/internal/widget"
)

// Login stores the returned access token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	var out auth.LoginResponse
	err := c.Do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	c.tokens.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.tokens.Clear()
	return err
}

func (c *Client) Me(ctx context.Context) (*auth.Profile, error) {
	var out auth.Profile
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Overview(ctx context.Context) (*dashboard.Overview, error) {
	var out dashboard.Overview
	if err := c.Do(ctx, http.MethodGet, "/dashboard/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListModels(ctx context.Context, opts ListOptions) ([]aimodel.AIModel, *Meta, error) {
	var out []aimodel.AIModel
	meta, err := c.List(ctx, "/models", opts, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, meta, nil
}

func (c *Client) SetDefaultModel(ctx context.Context, id string) (*aimodel.AIModel, error) {
	var out aimodel.AIModel
	if err := c.Do(ctx, http.MethodPost, "/models/"+url.PathEscape(id)+"/default", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteModel(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/models/"+url.PathEscape(id), nil, nil)
}

// ExportWidgetSettings returns the raw exported document.
func (c *Client) ExportWidgetSettings(ctx context.Context) ([]byte, error) {
	return c.raw(ctx, http.MethodGet, "/widget/settings/export", nil, "")
}

func (c *Client) ImportWidgetSettings(ctx context.Context, document []byte) (*widget.View, error) {
	data, err := c.raw(ctx, http.MethodPost, "/widget/settings/import", bytes.NewReader(document), "application/json")
	if err != nil {
		return nil, err
	}
	var out widget.View
	if err := decodeData(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
