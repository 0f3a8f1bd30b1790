// Package server exposes the note repository over a local HTTP API and
// serves the bundled web UI.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"github.com/voxnote/voxnote/internal/config"
	"github.com/voxnote/voxnote/internal/export"
	"github.com/voxnote/voxnote/internal/note"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine

	// The repository is single-goroutine by design; the mutex serializes
	// handler access to it.
	mu        sync.Mutex
	notes     *note.Repository
	exportDir string
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, notes *note.Repository, exportDir string) *Server {
	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		config:    cfg,
		logger:    logger,
		router:    router,
		notes:     notes,
		exportDir: exportDir,
	}

	// Setup middleware and routes
	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")
	{
		api.GET("/notes", s.handleListNotes)
		api.POST("/notes", s.handleCreateNote)
		api.DELETE("/notes", s.handleClearNotes)
		api.GET("/notes/current", s.handleCurrentNote)
		api.GET("/notes/:id", s.handleGetNote)
		api.PATCH("/notes/:id", s.handleUpdateNote)
		api.DELETE("/notes/:id", s.handleDeleteNote)
		api.POST("/notes/:id/select", s.handleSelectNote)
		api.POST("/notes/:id/export", s.handleExportNote)
	}

	// Serve the static web UI as fallback. The ./public directory is a
	// build artifact placed next to the binary at deploy time, not part of
	// this repo; until it exists, unmatched paths 404. NoRoute only
	// triggers when no explicit routes match.
	s.router.NoRoute(static.Serve("/", static.LocalFile("./public", false)))
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "voxnote",
	})
}

func (s *Server) handleListNotes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"notes":   s.notes.Notes(),
		"current": s.notes.Current().ID,
	})
}

func (s *Server) handleCreateNote(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusCreated, s.notes.Create())
}

func (s *Server) handleClearNotes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.notes.ClearAll())
}

func (s *Server) handleCurrentNote(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.notes.Current())
}

func (s *Server) handleGetNote(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}

	c.JSON(http.StatusOK, n)
}

func (s *Server) handleUpdateNote(c *gin.Context) {
	var patch note.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.notes.Update(c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, note.ErrNoSuchNote) {
			c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
			return
		}

		s.logger.Error("Failed to update note", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, n)
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notes.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"current": s.notes.Current().ID})
}

func (s *Server) handleSelectNote(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes.Get(c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}

	s.notes.Select(c.Param("id"))

	c.JSON(http.StatusOK, s.notes.Current())
}

func (s *Server) handleExportNote(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}

	path, err := export.Write(s.exportDir, n)
	if err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "note has no content to export"})
			return
		}

		s.logger.Error("Failed to export note", "id", n.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": filepath.ToSlash(path)})
}
