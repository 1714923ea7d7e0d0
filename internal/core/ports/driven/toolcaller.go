package driven

import (
	"context"
	"encoding/json"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// ToolCaller invokes tools on a remote MCP server. Tool-level failures come
// back in-band as the result text ("Error: ..."), mirroring the protocol's
// isError convention; err is reserved for transport failures.
type ToolCaller interface {
	// ListTools returns the tools the server advertises.
	ListTools(ctx context.Context) ([]domain.ToolDef, error)

	// CallTool invokes a tool and returns its text result.
	CallTool(ctx context.Context, name string, args json.RawMessage) (string, error)

	// Close terminates the client session.
	Close() error
}
