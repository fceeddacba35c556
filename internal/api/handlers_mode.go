// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
)

// handleModeStats returns the coordinator's current statistics.
// GET /v0/mode
func (s *Server) handleModeStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.coordinator.Stats())
}

type switchRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// handleModeSwitch asks the coordinator to adopt a new mode.
// POST /v0/mode/switch
func (s *Server) handleModeSwitch(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid mode field"})
		return
	}

	target, err := mode.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.coordinator.SwitchMode(c.Request.Context(), target) {
		c.JSON(http.StatusConflict, gin.H{
			"switched": false,
			"mode":     s.coordinator.CurrentMode(),
			"status":   s.coordinator.Status(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"switched": true,
		"mode":     s.coordinator.CurrentMode(),
	})
}

// handleModeRecover triggers a manual recovery attempt.
// POST /v0/mode/recover
func (s *Server) handleModeRecover(c *gin.Context) {
	recovered := s.coordinator.AttemptRecovery(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"recovered": recovered,
		"mode":      s.coordinator.CurrentMode(),
		"status":    s.coordinator.Status(),
	})
}

// handleToolRoute reports how a tool would be executed right now.
// GET /v0/tools/:name/route
func (s *Server) handleToolRoute(c *gin.Context) {
	name := c.Param("name")
	c.JSON(http.StatusOK, gin.H{
		"tool":      name,
		"category":  s.coordinator.Registry().Category(name),
		"route":     s.coordinator.OptimalModeForTool(name),
		"available": s.coordinator.IsCapabilityAvailable(name),
		"mode":      s.coordinator.CurrentMode(),
	})
}
