/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Script is a script row as listed by the server.
type Script struct {
	ID        int64     `json:"id"`
	StableID  string    `json:"stable_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// RevisionEnvelope carries one full-text revision of a script.
type RevisionEnvelope struct {
	ScriptID  int64  `json:"script_id"`
	Version   int64  `json:"version"`
	CreatedAt string `json:"created_at"`
	Body      string `json:"body"`
}

// PushResult reports the version assigned to a pushed revision.
type PushResult struct {
	ScriptID int64 `json:"script_id"`
	Version  int64 `json:"version"`
}

// Client talks to the sync server. Zero value is not usable; construct
// with NewClient.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient builds a client for the given server. Token may be empty for
// unauthenticated endpoints such as RequestToken.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// RequestToken asks the server for a signed bearer token and stores it on
// the client for subsequent calls.
func (c *Client) RequestToken(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	body := map[string]any{"subject": subject, "ttl_seconds": int64(ttl.Seconds())}
	var resp struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/token", body, &resp); err != nil {
		return "", err
	}
	c.Token = resp.Token
	return resp.Token, nil
}

// ListScripts returns every script the server knows, newest first.
func (c *Client) ListScripts(ctx context.Context) ([]Script, error) {
	var list []Script
	if err := c.do(ctx, http.MethodGet, "/api/scripts", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetLatest fetches the latest revision of a script.
func (c *Client) GetLatest(ctx context.Context, scriptID int64) (RevisionEnvelope, error) {
	var env RevisionEnvelope
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/scripts/%d/latest", scriptID), nil, &env)
	return env, err
}

// PushRevision uploads a new full-text revision and returns the assigned
// version number.
func (c *Client) PushRevision(ctx context.Context, scriptID int64, body string) (PushResult, error) {
	var res PushResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/scripts/%d/revisions", scriptID),
		map[string]any{"body": body}, &res)
	return res, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
