// Package mcpclient connects the middle layer to a knowledge-base MCP
// server over streamable HTTP, forwarding credential headers on every
// request.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ToolCaller = (*Client)(nil)

// Config holds configuration for the MCP tool client.
type Config struct {
	// Endpoint is the MCP server URL (required).
	Endpoint string

	// Headers are set on every request. Used to carry the credential
	// headers through to the server.
	Headers map[string]string
}

// Client is an MCP client session against one server.
type Client struct {
	session *mcp.ClientSession
}

// headerRoundTripper injects fixed headers into every outbound request.
type headerRoundTripper struct {
	headers map[string]string
	next    http.RoundTripper
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	for k, v := range h.headers {
		cloned.Header.Set(k, v)
	}
	return h.next.RoundTrip(cloned)
}

// Connect dials the server and runs the MCP initialize handshake.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("mcpclient: endpoint is required")
	}

	httpClient := &http.Client{}
	if len(cfg.Headers) > 0 {
		httpClient.Transport = &headerRoundTripper{
			headers: cfg.Headers,
			next:    http.DefaultTransport,
		}
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "kbridge",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   cfg.Endpoint,
		HTTPClient: httpClient,
	}, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Collaborator: "mcp", Err: err}
	}

	return &Client{session: session}, nil
}

// ListTools returns the tools the server advertises.
func (c *Client) ListTools(ctx context.Context) ([]domain.ToolDef, error) {
	result, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Collaborator: "mcp", Err: err}
	}

	tools := make([]domain.ToolDef, 0, len(result.Tools))
	for _, t := range result.Tools {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshalling schema for %s: %w", t.Name, err)
		}
		tools = append(tools, domain.ToolDef{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return tools, nil
}

// CallTool invokes a tool and returns the concatenated text content.
// Tool-level failures (IsError results) come back as the text itself, so
// the model can read and react to them.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (string, error) {
	var argsMap map[string]any
	if len(args) > 0 {
		if err := json.Unmarshal(args, &argsMap); err != nil {
			return "", fmt.Errorf("%w: parsing arguments for %s: %v", domain.ErrInvalidInput, name, err)
		}
	}

	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: argsMap,
	})
	if err != nil {
		return "", &domain.UpstreamError{Collaborator: "mcp", Err: err}
	}

	var output strings.Builder
	for _, content := range result.Content {
		if textContent, ok := content.(*mcp.TextContent); ok {
			output.WriteString(textContent.Text)
		}
	}
	return output.String(), nil
}

// Close terminates the client session.
func (c *Client) Close() error {
	return c.session.Close()
}
