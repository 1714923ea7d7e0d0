package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbridge/kbridge/internal/adapters/driving/mcp"
	"github.com/kbridge/kbridge/internal/core/domain"
)

var (
	servePort    int
	serveIdleTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP tool server",
	Long: `Start the Model Context Protocol server exposing the knowledge-base
tools (upload, search, get, delete).

By default the server communicates over stdio with one implicit session,
for use with Claude Desktop and similar MCP clients. Credentials come from
the environment (KB_STORE_URL, KB_STORE_KEY, OPENAI_API_KEY).

Use --port to serve over HTTP instead. Each HTTP client gets its own
session keyed by the Mcp-Session-Id header, with per-session credentials
resolved from the x-store-url, x-store-key and x-openai-key headers
(falling back to the environment).

Examples:
  # Stdio mode (default)
  kbridge serve

  # HTTP mode
  kbridge serve --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (0 = use stdio)")
	serveCmd.Flags().DurationVar(&serveIdleTTL, "session-idle-ttl", 0, "evict sessions idle this long (0 = never)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort > 0 {
		registry := mcp.NewRegistry(serveIdleTTL)
		defer registry.Close()

		router := mcp.NewRouter(registry, mcp.NewHandleFactory(buildPorts), envSnapshot())

		addr := fmt.Sprintf(":%d", servePort)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s/mcp\n", addr)
		return mcp.RunHTTP(cmd.Context(), addr, router)
	}

	// Stdio: one implicit session, credentials from the environment only.
	creds, err := domain.ResolveCredentials(nil, envSnapshot())
	if err != nil {
		return err
	}

	ports, err := buildPorts(creds)
	if err != nil {
		return err
	}
	defer closeAll(ports.Closers)

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}
	return server.Run(cmd.Context())
}
