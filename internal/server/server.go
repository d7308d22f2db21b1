// Package server is the HTTP front end: a thin gin wrapper over the
// pipeline orchestrator. All real behavior lives in the orchestrator; the
// handlers only parse requests, map errors to status codes and render JSON.
package server

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/video-workbench/config"
	"github.com/jaki95/video-workbench/internal/pipeline"
)

// Server handles HTTP requests for the video workbench.
type Server struct {
	cfg         *config.Config
	router      *gin.Engine
	orch        *pipeline.Orchestrator
	downloadDir string
}

// New creates a new HTTP server instance around an orchestrator.
func New(cfg *config.Config, orch *pipeline.Orchestrator) *Server {
	router := gin.Default()

	server := &Server{
		cfg:         cfg,
		router:      router,
		orch:        orch,
		downloadDir: cfg.Download.Dir,
	}

	server.setupRoutes(router)
	return server
}

func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/health", s.healthCheck)
	router.GET("/downloads/*filepath", s.serveDownload)

	api := router.Group("/api")
	{
		api.POST("/preview", s.previewVideo)
		api.POST("/clip", s.getVideo)
		api.POST("/segments", s.getSegments)
		api.POST("/finish", s.finishDownload)
		api.POST("/process", s.processVideo)
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port string) error {
	slog.Info("Starting video workbench server", "port", port)
	return s.router.Run(":" + port)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "video-workbench",
	})
}

// serveDownload serves artifact files from the downloads directory, refusing
// anything that escapes it.
func (s *Server) serveDownload(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filepath"), "/")

	baseDir, err := filepath.Abs(s.downloadDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "downloads directory unavailable"})
		return
	}

	requested, err := filepath.Abs(filepath.Join(baseDir, name))
	if err != nil || !strings.HasPrefix(requested, baseDir+string(filepath.Separator)) {
		c.Status(http.StatusNotFound)
		return
	}

	c.File(requested)
}
