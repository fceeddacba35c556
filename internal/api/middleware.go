// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// requestIDHeader carries the request ID to and from clients.
const requestIDHeader = "X-Request-ID"

// requestIDMiddleware assigns each request a short ID, reusing the
// client-supplied one when present. The ID feeds the log formatter.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()[:8]
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogMiddleware logs one line per request through logrus with
// the request ID attached.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": c.GetString("request_id"),
			"status":     c.Writer.Status(),
			"elapsed":    time.Since(start).Round(time.Microsecond),
		})
		line := c.Request.Method + " " + c.Request.URL.Path
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error(line)
		} else {
			entry.Info(line)
		}
	}
}

// managementAuth guards mutating mode endpoints with the configured
// management key. An empty configured key disables the endpoints
// entirely rather than leaving them open.
func (s *Server) managementAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.ManagementKey == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "management endpoints disabled: no management-key configured",
			})
			return
		}

		presented := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !s.cfg.CheckManagementKey(presented) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid management key",
			})
			return
		}
		c.Next()
	}
}
