// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package api exposes the server's HTTP surface: mode management, the
// documentation tools, the gated live-content proxy and the websocket
// event stream.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/config"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/docs"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/drupal"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
	"github.com/Vincy69/mcp-drupal-server-sub001/internal/scanner"
)

// Server wires the HTTP routes to the coordinator and its collaborators.
type Server struct {
	cfg         *config.Config
	coordinator *mode.Coordinator
	backend     *drupal.Client
	docs        *docs.Service
	analyzer    *scanner.Analyzer
	events      *eventBroker

	engine     *gin.Engine
	httpServer *http.Server
}

// NewServer builds the server and registers all routes. backend may be
// nil when no live site is configured.
func NewServer(cfg *config.Config, coordinator *mode.Coordinator, backend *drupal.Client, docsSvc *docs.Service) *Server {
	s := &Server{
		cfg:         cfg,
		coordinator: coordinator,
		backend:     backend,
		docs:        docsSvc,
		analyzer:    scanner.NewAnalyzer(docsSvc.Index().DeprecatedFunctions()),
		events:      newEventBroker(),
		engine:      gin.New(),
	}

	coordinator.AddEventHandler(s.events)

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestIDMiddleware())
	s.engine.Use(requestLogMiddleware())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	v0 := s.engine.Group("/v0")
	{
		v0.GET("/mode", s.handleModeStats)
		v0.GET("/mode/events", s.handleModeEvents)
		v0.GET("/tools/:name/route", s.handleToolRoute)

		docsGroup := v0.Group("/docs")
		{
			docsGroup.GET("/functions", s.handleSearchFunctions)
			docsGroup.GET("/functions/:name", s.handleFunctionDetails)
			docsGroup.GET("/hooks", s.handleSearchHooks)
			docsGroup.GET("/hooks/:name", s.handleHookDetails)
			docsGroup.GET("/classes", s.handleSearchClasses)
			docsGroup.GET("/classes/:name", s.handleClassDetails)
			docsGroup.GET("/topics", s.handleSearchTopics)
			docsGroup.GET("/contrib", s.handleSearchContrib)
			docsGroup.GET("/examples", s.handleFindExamples)
			docsGroup.POST("/analyze", s.handleAnalyze)
			docsGroup.POST("/scaffold", s.handleScaffold)
		}

		nodes := v0.Group("/nodes")
		{
			nodes.GET("/:bundle", s.gated("list_nodes", s.handleListNodes))
			nodes.GET("/:bundle/:id", s.gated("get_node", s.handleGetNode))
			nodes.POST("/:bundle", s.gated("create_node", s.handleCreateNode))
			nodes.PATCH("/:bundle/:id", s.gated("update_node", s.handleUpdateNode))
			nodes.DELETE("/:bundle/:id", s.gated("delete_node", s.handleDeleteNode))
		}
		v0.GET("/content-types", s.gated("list_content_types", s.handleListContentTypes))

		mgmt := v0.Group("/mode", s.managementAuth())
		{
			mgmt.POST("/switch", s.handleModeSwitch)
			mgmt.POST("/recover", s.handleModeRecover)
		}
	}
}

// Start runs the HTTP server until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("api server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the event stream.
func (s *Server) Shutdown(ctx context.Context) error {
	s.events.close()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"mode":   s.coordinator.CurrentMode(),
	})
}
