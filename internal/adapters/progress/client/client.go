// Package client mirrors progress to the dashboard server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress"
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

const (
	DefaultBaseURL = "http://localhost:3000"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.ProgressStore = (*Client)(nil)

func New(baseURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) SetAccounts(ctx context.Context, accounts []string) error {
	if accounts == nil {
		accounts = []string{}
	}
	return c.post(ctx, progress.PathAccounts, progress.AccountsRequest{Users: accounts})
}

func (c *Client) SetCount(ctx context.Context, account string, count int) error {
	return c.post(ctx, progress.PathCount, progress.CountRequest{User: account, TxCount: count})
}

func (c *Client) Snapshot(ctx context.Context) (domain.ProgressSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+progress.PathData, nil)
	if err != nil {
		return domain.ProgressSnapshot{}, fmt.Errorf("build progress request: %w", err)
	}

	var data progress.DataResponse
	if err := c.do(req, &data); err != nil {
		return domain.ProgressSnapshot{}, err
	}
	return data.Snapshot(), nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode progress request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build progress request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
