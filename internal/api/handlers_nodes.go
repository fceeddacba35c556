// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/drupal"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
)

// gated wraps a live-backed handler with the coordinator's routing
// decision. When the tool cannot run in the current state the request
// fails with 503 and enough context to explain why.
func (s *Server) gated(tool string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := s.coordinator.OptimalModeForTool(tool)
		if route == mode.RouteNone {
			status := s.coordinator.Status()
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":  "tool unavailable in current mode",
				"tool":   tool,
				"mode":   s.coordinator.CurrentMode(),
				"status": status,
			})
			return
		}
		handler(c)
	}
}

// backendError maps a drupal client error onto an HTTP response,
// forwarding the backend status when one exists.
func backendError(c *gin.Context, err error) {
	if code, ok := drupal.StatusCode(err); ok {
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	log.Warnf("backend request failed: %v", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// GET /v0/nodes/:bundle?limit=N
func (s *Server) handleListNodes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	nodes, err := s.backend.ListNodes(c.Request.Context(), c.Param("bundle"), limit)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes})
}

// GET /v0/nodes/:bundle/:id
func (s *Server) handleGetNode(c *gin.Context) {
	node, err := s.backend.GetNode(c.Request.Context(), c.Param("bundle"), c.Param("id"))
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

type nodeRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// POST /v0/nodes/:bundle
func (s *Server) handleCreateNode(c *gin.Context) {
	var req nodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid title field"})
		return
	}

	node, err := s.backend.CreateNode(c.Request.Context(), c.Param("bundle"), req.Title, req.Body)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

// PATCH /v0/nodes/:bundle/:id
func (s *Server) handleUpdateNode(c *gin.Context) {
	var req nodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid title field"})
		return
	}

	node, err := s.backend.UpdateNode(c.Request.Context(), c.Param("bundle"), c.Param("id"), req.Title, req.Body)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// DELETE /v0/nodes/:bundle/:id
func (s *Server) handleDeleteNode(c *gin.Context) {
	if err := s.backend.DeleteNode(c.Request.Context(), c.Param("bundle"), c.Param("id")); err != nil {
		backendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v0/content-types
func (s *Server) handleListContentTypes(c *gin.Context) {
	types, err := s.backend.ListContentTypes(c.Request.Context())
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content_types": types})
}
