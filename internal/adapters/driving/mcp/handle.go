package mcp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Response is the transport-level outcome of forwarding one message.
type Response struct {
	// Status is the HTTP status code to relay.
	Status int

	// ContentType is the response body's media type.
	ContentType string

	// Body is the raw response payload, relayed verbatim.
	Body []byte
}

// TransportHandle is one session's connection to its server instance.
// Implementations serialize Send calls: within a session, messages are
// handled one at a time.
type TransportHandle interface {
	// Send forwards a raw message body and returns the response envelope.
	// protocolVersion carries the client's MCP-Protocol-Version header,
	// empty if absent.
	Send(ctx context.Context, body []byte, protocolVersion string) (*Response, error)

	// Close releases the session's resources.
	Close() error
}

// serverHandle drives a per-session server through the SDK's streamable
// HTTP handler with in-process requests. The SDK issues its own session
// id on initialize; the handle keeps it internal and replays it on every
// subsequent message, so the registry's ids are the only ones clients see.
type serverHandle struct {
	mu       sync.Mutex
	handler  http.Handler
	innerSID string
	closers  []io.Closer
}

func newServerHandle(srv *mcp.Server, closers []io.Closer) *serverHandle {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return srv
	}, nil)
	return &serverHandle{handler: handler, closers: closers}
}

// Send forwards one message. The mutex gives per-session serialization;
// concurrent requests for the same session id queue here instead of racing
// on the underlying connection.
func (h *serverHandle) Send(ctx context.Context, body []byte, protocolVersion string) (*Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://kbridge.internal/mcp", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if protocolVersion != "" {
		req.Header.Set("MCP-Protocol-Version", protocolVersion)
	}
	if h.innerSID != "" {
		req.Header.Set("Mcp-Session-Id", h.innerSID)
	}

	rec := newResponseBuffer()
	h.handler.ServeHTTP(rec, req)

	if sid := rec.Header().Get("Mcp-Session-Id"); sid != "" {
		h.innerSID = sid
	}

	return &Response{
		Status:      rec.status,
		ContentType: rec.Header().Get("Content-Type"),
		Body:        rec.body.Bytes(),
	}, nil
}

// Close releases the session's backing resources.
func (h *serverHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var firstErr error
	for _, c := range h.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// responseBuffer captures an in-process HTTP response. It implements
// http.Flusher so streaming handlers write through without complaint.
type responseBuffer struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (r *responseBuffer) Header() http.Header {
	return r.header
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *responseBuffer) WriteHeader(status int) {
	r.status = status
}

func (r *responseBuffer) Flush() {}
