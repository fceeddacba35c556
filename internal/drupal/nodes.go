// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package drupal

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Node is the subset of a Drupal node the server works with.
type Node struct {
	ID      string `json:"id"`
	Bundle  string `json:"bundle"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
	Status  bool   `json:"status"`
	Created string `json:"created,omitempty"`
	Changed string `json:"changed,omitempty"`
}

// ContentType describes a node bundle.
type ContentType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SiteInfo is the minimal site metadata surfaced by the status tool.
type SiteInfo struct {
	JSONAPIVersion string `json:"jsonapi_version"`
	BaseURL        string `json:"base_url"`
}

// GetNode fetches one node by bundle and UUID.
func (c *Client) GetNode(ctx context.Context, bundle, id string) (*Node, error) {
	body, err := c.do(ctx, "GET", fmt.Sprintf("/jsonapi/node/%s/%s", url.PathEscape(bundle), url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}
	return nodeFromDocument(body, bundle), nil
}

// ListNodes fetches up to limit nodes of a bundle, newest first.
func (c *Client) ListNodes(ctx context.Context, bundle string, limit int) ([]Node, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	path := fmt.Sprintf("/jsonapi/node/%s?sort=-created&page[limit]=%d", url.PathEscape(bundle), limit)
	body, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var nodes []Node
	gjson.GetBytes(body, "data").ForEach(func(_, item gjson.Result) bool {
		nodes = append(nodes, Node{
			ID:      item.Get("id").String(),
			Bundle:  bundle,
			Title:   item.Get("attributes.title").String(),
			Status:  item.Get("attributes.status").Bool(),
			Created: item.Get("attributes.created").String(),
			Changed: item.Get("attributes.changed").String(),
		})
		return true
	})
	return nodes, nil
}

// CreateNode creates a node and returns the stored copy.
func (c *Client) CreateNode(ctx context.Context, bundle, title, body string) (*Node, error) {
	payload, err := nodeDocument(bundle, "", title, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "POST", fmt.Sprintf("/jsonapi/node/%s", url.PathEscape(bundle)), payload)
	if err != nil {
		return nil, err
	}
	return nodeFromDocument(resp, bundle), nil
}

// UpdateNode patches title and body of an existing node.
func (c *Client) UpdateNode(ctx context.Context, bundle, id, title, body string) (*Node, error) {
	payload, err := nodeDocument(bundle, id, title, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "PATCH", fmt.Sprintf("/jsonapi/node/%s/%s", url.PathEscape(bundle), url.PathEscape(id)), payload)
	if err != nil {
		return nil, err
	}
	return nodeFromDocument(resp, bundle), nil
}

// DeleteNode removes a node.
func (c *Client) DeleteNode(ctx context.Context, bundle, id string) error {
	_, err := c.do(ctx, "DELETE", fmt.Sprintf("/jsonapi/node/%s/%s", url.PathEscape(bundle), url.PathEscape(id)), nil)
	return err
}

// ListContentTypes fetches the configured node bundles.
func (c *Client) ListContentTypes(ctx context.Context) ([]ContentType, error) {
	body, err := c.do(ctx, "GET", "/jsonapi/node_type/node_type", nil)
	if err != nil {
		return nil, err
	}

	var types []ContentType
	gjson.GetBytes(body, "data").ForEach(func(_, item gjson.Result) bool {
		types = append(types, ContentType{
			ID:          item.Get("attributes.drupal_internal__type").String(),
			Name:        item.Get("attributes.name").String(),
			Description: item.Get("attributes.description").String(),
		})
		return true
	})
	return types, nil
}

// GetSiteInfo fetches the minimal site metadata from the JSON:API entry
// point. This is the same request the health probe issues.
func (c *Client) GetSiteInfo(ctx context.Context) (*SiteInfo, error) {
	body, err := c.do(ctx, "GET", "/jsonapi", nil)
	if err != nil {
		return nil, err
	}
	return &SiteInfo{
		JSONAPIVersion: gjson.GetBytes(body, "jsonapi.version").String(),
		BaseURL:        c.baseURL,
	}, nil
}

// nodeDocument builds a JSON:API node document. The id is included only
// for updates.
func nodeDocument(bundle, id, title, body string) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	if doc, err = sjson.SetBytes(doc, "data.type", "node--"+bundle); err != nil {
		return nil, fmt.Errorf("drupal api: build document: %w", err)
	}
	if id != "" {
		if doc, err = sjson.SetBytes(doc, "data.id", id); err != nil {
			return nil, fmt.Errorf("drupal api: build document: %w", err)
		}
	}
	if doc, err = sjson.SetBytes(doc, "data.attributes.title", title); err != nil {
		return nil, fmt.Errorf("drupal api: build document: %w", err)
	}
	if body != "" {
		if doc, err = sjson.SetBytes(doc, "data.attributes.body.value", body); err != nil {
			return nil, fmt.Errorf("drupal api: build document: %w", err)
		}
		if doc, err = sjson.SetBytes(doc, "data.attributes.body.format", "basic_html"); err != nil {
			return nil, fmt.Errorf("drupal api: build document: %w", err)
		}
	}
	return doc, nil
}

// nodeFromDocument extracts a Node from a single-resource document.
func nodeFromDocument(doc []byte, bundle string) *Node {
	data := gjson.GetBytes(doc, "data")
	return &Node{
		ID:      data.Get("id").String(),
		Bundle:  bundle,
		Title:   data.Get("attributes.title").String(),
		Body:    data.Get("attributes.body.value").String(),
		Status:  data.Get("attributes.status").Bool(),
		Created: data.Get("attributes.created").String(),
		Changed: data.Get("attributes.changed").String(),
	}
}
