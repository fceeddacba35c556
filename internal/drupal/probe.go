// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drupal

import (
	"context"
	"errors"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
)

// Probe performs one health check against the JSON:API entry point. It
// implements mode.Prober. A missing base URL is reported through
// mode.ErrNotConfigured so the coordinator can treat it as an immediate,
// non-retryable disconnect instead of probing a void.
func (c *Client) Probe(ctx context.Context) (*mode.ProbeResult, error) {
	if !c.Configured() {
		return nil, mode.ErrNotConfigured
	}

	start := time.Now()
	body, err := c.do(ctx, "GET", "/jsonapi", nil)
	elapsed := time.Since(start)

	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			// The site answered, just not usefully. Auth failures still
			// mean the backend is reachable but the live surface is not
			// usable, so the probe reports disconnected with the cause.
			return &mode.ProbeResult{
				ResponseTime: elapsed,
				Error:        apiErr.Error(),
			}, nil
		}
		return nil, err
	}

	return &mode.ProbeResult{
		Connected:    true,
		ResponseTime: elapsed,
		Capabilities: c.capabilities(body),
	}, nil
}

// capabilities derives the capability tags advertised to the coordinator
// from the probe response and the client configuration.
func (c *Client) capabilities(probeBody []byte) []string {
	caps := []string{"query"}
	if c.HasCredentials() {
		caps = append(caps, "crud", "admin")
	}
	if gjson.GetBytes(probeBody, "meta.links.me").Exists() {
		caps = append(caps, "user_context")
	}
	return caps
}
