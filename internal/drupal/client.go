// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package drupal implements the JSON:API client for the live Drupal
// backend. It covers the health probe consumed by the mode coordinator
// and the CRUD operations exposed through the live tool surface.
package drupal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const jsonAPIContentType = "application/vnd.api+json"

// ClientConfig carries the connection settings for a Drupal site.
type ClientConfig struct {
	// BaseURL is the site root, e.g. "https://example.org". Empty means
	// no live backend is configured.
	BaseURL string

	// Username and Password enable HTTP basic authentication.
	Username string
	Password string

	// Token enables bearer-token authentication and wins over basic auth
	// when both are set.
	Token string

	// Timeout bounds every request round trip.
	Timeout time.Duration
}

// Client talks JSON:API to one Drupal site.
type Client struct {
	baseURL  string
	username string
	password string
	token    string
	http     *http.Client
}

// NewClient creates a client from the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base != "" {
		if _, err := url.Parse(base); err != nil {
			return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  base,
		username: cfg.Username,
		password: cfg.Password,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// Configured reports whether a backend URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// HasCredentials reports whether the client can authenticate.
func (c *Client) HasCredentials() bool {
	return c.token != "" || (c.username != "" && c.password != "")
}

// BaseURL returns the configured site root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiError carries the HTTP status of a failed JSON:API request so
// callers can distinguish auth failures from server errors.
type apiError struct {
	StatusCode int
	Detail     string
}

func (e *apiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("drupal api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("drupal api: status %d", e.StatusCode)
}

// StatusCode extracts the backend HTTP status from an error returned by
// this package. ok is false for transport-level errors.
func StatusCode(err error) (code int, ok bool) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// do performs one authenticated JSON:API request and returns the raw
// response body for 2xx answers.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("drupal api: no base url configured")
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("drupal api: build request: %w", err)
	}
	req.Header.Set("Accept", jsonAPIContentType)
	if payload != nil {
		req.Header.Set("Content-Type", jsonAPIContentType)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drupal api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("drupal api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(log.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("drupal api request failed")
		return nil, &apiError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}
	return data, nil
}

func (c *Client) authorize(req *http.Request) {
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.username != "":
		req.SetBasicAuth(c.username, c.password)
	}
}

// errorDetail extracts the first error detail from a JSON:API error
// document, if the body holds one.
func errorDetail(body []byte) string {
	var doc struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || len(doc.Errors) == 0 {
		return ""
	}
	if doc.Errors[0].Detail != "" {
		return doc.Errors[0].Detail
	}
	return doc.Errors[0].Title
}
