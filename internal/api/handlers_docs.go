// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/scaffold"
)

func searchParams(c *gin.Context) (query string, limit int) {
	query = c.Query("q")
	limit, _ = strconv.Atoi(c.Query("limit"))
	return query, limit
}

// GET /v0/docs/functions?q=...
func (s *Server) handleSearchFunctions(c *gin.Context) {
	q, limit := searchParams(c)
	c.JSON(http.StatusOK, gin.H{"results": s.docs.Index().SearchFunctions(q, limit)})
}

// GET /v0/docs/functions/:name
func (s *Server) handleFunctionDetails(c *gin.Context) {
	f, ok := s.docs.Index().FunctionDetails(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown function"})
		return
	}
	c.JSON(http.StatusOK, f)
}

// GET /v0/docs/hooks?q=...
func (s *Server) handleSearchHooks(c *gin.Context) {
	q, limit := searchParams(c)
	c.JSON(http.StatusOK, gin.H{"results": s.docs.Index().SearchHooks(q, limit)})
}

// GET /v0/docs/hooks/:name
func (s *Server) handleHookDetails(c *gin.Context) {
	h, ok := s.docs.Index().HookDetails(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown hook"})
		return
	}
	c.JSON(http.StatusOK, h)
}

// GET /v0/docs/classes?q=...
func (s *Server) handleSearchClasses(c *gin.Context) {
	q, limit := searchParams(c)
	c.JSON(http.StatusOK, gin.H{"results": s.docs.Index().SearchClasses(q, limit)})
}

// GET /v0/docs/classes/:name
func (s *Server) handleClassDetails(c *gin.Context) {
	cl, ok := s.docs.Index().ClassDetails(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown class"})
		return
	}
	c.JSON(http.StatusOK, cl)
}

// GET /v0/docs/topics?q=...
func (s *Server) handleSearchTopics(c *gin.Context) {
	q, limit := searchParams(c)
	c.JSON(http.StatusOK, gin.H{"results": s.docs.Index().SearchTopics(q, limit)})
}

// GET /v0/docs/contrib?q=...
func (s *Server) handleSearchContrib(c *gin.Context) {
	q, limit := searchParams(c)
	c.JSON(http.StatusOK, gin.H{"results": s.docs.Index().SearchContribModules(q, limit)})
}

// GET /v0/docs/examples?q=...
func (s *Server) handleFindExamples(c *gin.Context) {
	q, limit := searchParams(c)
	c.JSON(http.StatusOK, gin.H{"results": s.docs.FindExamples(q, limit)})
}

type analyzeRequest struct {
	Path string `json:"path" binding:"required"`
}

// handleAnalyze runs the source scanner over a local extension
// directory.
// POST /v0/docs/analyze
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid path field"})
		return
	}

	report, err := s.analyzer.AnalyzeDir(req.Path)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

type scaffoldRequest struct {
	Machine      string   `json:"machine" binding:"required"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Package      string   `json:"package"`
	CoreVersion  string   `json:"core_version"`
	Dependencies []string `json:"dependencies"`
	Hooks        []string `json:"hooks"`
	WithRouting  bool     `json:"with_routing"`
	WithServices bool     `json:"with_services"`
}

// handleScaffold generates a module skeleton and returns the files
// inline.
// POST /v0/docs/scaffold
func (s *Server) handleScaffold(c *gin.Context) {
	var req scaffoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid machine field"})
		return
	}

	files, err := scaffold.Generate(scaffold.Options{
		Machine:      req.Machine,
		Name:         req.Name,
		Description:  req.Description,
		Package:      req.Package,
		CoreVersion:  req.CoreVersion,
		Dependencies: req.Dependencies,
		Hooks:        req.Hooks,
		WithRouting:  req.WithRouting,
		WithServices: req.WithServices,
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}
