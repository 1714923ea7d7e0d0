// Package httpapi is the REST middle layer: a small Echo server that lets
// a web client chat with the knowledge base and manage its files without
// speaking MCP itself.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kbridge/kbridge/internal/core/ports/driving"
)

// MaxUploadBytes caps multipart uploads.
const MaxUploadBytes = 10 << 20

// Server is the REST API server.
type Server struct {
	chat      driving.ChatService
	documents driving.DocumentService
	echo      *echo.Echo
}

// NewServer creates the REST server and registers its routes.
func NewServer(chat driving.ChatService, documents driving.DocumentService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("10M"))

	s := &Server{
		chat:      chat,
		documents: documents,
		echo:      e,
	}

	e.GET("/health", s.handleHealth)
	e.POST("/api/chat", s.handleChat)
	e.GET("/api/files", s.handleListFiles)
	e.POST("/api/upload", s.handleUpload)
	e.DELETE("/api/files", s.handleDeleteFiles)

	return s
}

// Start serves on addr until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.echo.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
