package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for kbridge.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "kbridge",
		Version: Version,
	}

	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// PortsBuilder constructs the ports for one session from its resolved
// credentials. Each session gets its own store connection and provider
// clients so credential overrides stay isolated.
type PortsBuilder func(creds domain.Credentials) (*Ports, error)

// NewHandleFactory returns a HandleFactory that builds, per session, a
// dedicated server instance wired to the session's credentials.
func NewHandleFactory(build PortsBuilder) HandleFactory {
	return func(creds domain.Credentials) (TransportHandle, error) {
		ports, err := build(creds)
		if err != nil {
			return nil, err
		}
		srv, err := NewServer(ports)
		if err != nil {
			closePorts(ports)
			return nil, err
		}
		return newServerHandle(srv.server, ports.Closers), nil
	}
}

// RunHTTP serves the session router and a health endpoint on addr.
// It blocks until the context is cancelled or an error occurs.
func RunHTTP(ctx context.Context, addr string, router *Router) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, Version)
	})
	mux.Handle("/mcp", router)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func closePorts(p *Ports) {
	for _, c := range p.Closers {
		c.Close() //nolint:errcheck
	}
}
