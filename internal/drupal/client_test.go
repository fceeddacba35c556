package drupal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
)

func newTestClient(t *testing.T, handler http.Handler, cfg ClientConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func jsonAPIRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", jsonAPIContentType)
		_, _ = w.Write([]byte(`{"jsonapi":{"version":"1.0"},"data":[],"meta":{"links":{"me":{"href":"/user/1"}}}}`))
	}
}

func TestProbeNotConfigured(t *testing.T) {
	client, err := NewClient(ClientConfig{})
	require.NoError(t, err)

	_, err = client.Probe(context.Background())
	assert.True(t, errors.Is(err, mode.ErrNotConfigured))
}

func TestProbeSuccess(t *testing.T) {
	client := newTestClient(t, jsonAPIRoot(), ClientConfig{
		Username: "admin",
		Password: "secret",
	})

	result, err := client.Probe(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Connected)
	assert.Greater(t, result.ResponseTime, time.Duration(0))
	assert.Contains(t, result.Capabilities, "query")
	assert.Contains(t, result.Capabilities, "crud")
	assert.Contains(t, result.Capabilities, "admin")
	assert.Contains(t, result.Capabilities, "user_context")
}

func TestProbeWithoutCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonapi":{"version":"1.0"},"data":[]}`))
	}), ClientConfig{})

	result, err := client.Probe(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Connected)
	assert.Equal(t, []string{"query"}, result.Capabilities)
}

func TestProbeAuthFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Forbidden","detail":"Access denied"}]}`))
	}), ClientConfig{Token: "bad-token"})

	result, err := client.Probe(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Connected)
	assert.Contains(t, result.Error, "403")
	assert.Contains(t, result.Error, "Access denied")
}

func TestProbeTimeout(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}), ClientConfig{Timeout: 20 * time.Millisecond})

	_, err := client.Probe(context.Background())
	assert.Error(t, err)
}

func TestProbeHonorsContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}), ClientConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Probe(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestAuthorizationHeaders(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"jsonapi":{"version":"1.0"}}`))
	})

	t.Run("bearer token wins", func(t *testing.T) {
		client := newTestClient(t, handler, ClientConfig{
			Username: "admin", Password: "secret", Token: "tok123",
		})
		_, err := client.Probe(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok123", gotAuth)
	})

	t.Run("basic auth", func(t *testing.T) {
		client := newTestClient(t, handler, ClientConfig{Username: "admin", Password: "secret"})
		_, err := client.Probe(context.Background())
		require.NoError(t, err)
		assert.Contains(t, gotAuth, "Basic ")
	})
}

func TestGetNode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jsonapi/node/article/abc-123", r.URL.Path)
		assert.Equal(t, jsonAPIContentType, r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"data":{"type":"node--article","id":"abc-123",
			"attributes":{"title":"Hello","status":true,"body":{"value":"<p>Hi</p>"},
			"created":"2026-01-02T03:04:05+00:00"}}}`))
	}), ClientConfig{})

	node, err := client.GetNode(context.Background(), "article", "abc-123")
	require.NoError(t, err)

	assert.Equal(t, "abc-123", node.ID)
	assert.Equal(t, "article", node.Bundle)
	assert.Equal(t, "Hello", node.Title)
	assert.Equal(t, "<p>Hi</p>", node.Body)
	assert.True(t, node.Status)
}

func TestCreateNodeDocument(t *testing.T) {
	var gotBody []byte
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, jsonAPIContentType, r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"type":"node--page","id":"new-id","attributes":{"title":"T"}}}`))
	}), ClientConfig{Token: "tok"})

	node, err := client.CreateNode(context.Background(), "page", "T", "content")
	require.NoError(t, err)

	assert.Equal(t, "new-id", node.ID)
	assert.Contains(t, string(gotBody), `"node--page"`)
	assert.Contains(t, string(gotBody), `"basic_html"`)
}

func TestDeleteNodeError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Not Found"}]}`))
	}), ClientConfig{})

	err := client.DeleteNode(context.Background(), "article", "missing")
	require.Error(t, err)

	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Not Found")
}

func TestListContentTypes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jsonapi/node_type/node_type", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"attributes":{"drupal_internal__type":"article","name":"Article","description":"News"}},
			{"attributes":{"drupal_internal__type":"page","name":"Basic page"}}]}`))
	}), ClientConfig{})

	types, err := client.ListContentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)

	assert.Equal(t, "article", types[0].ID)
	assert.Equal(t, "Article", types[0].Name)
	assert.Equal(t, "page", types[1].ID)
}

func TestListNodes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-created", r.URL.Query().Get("sort"))
		assert.Equal(t, "5", r.URL.Query().Get("page[limit]"))
		_, _ = w.Write([]byte(`{"data":[
			{"id":"n1","attributes":{"title":"One","status":true}},
			{"id":"n2","attributes":{"title":"Two","status":false}}]}`))
	}), ClientConfig{})

	nodes, err := client.ListNodes(context.Background(), "article", 5)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "One", nodes[0].Title)
	assert.False(t, nodes[1].Status)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "://not-a-url"})
	assert.Error(t, err)
}
