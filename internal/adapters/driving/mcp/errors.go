// Package mcp provides the MCP (Model Context Protocol) server adapter for
// kbridge. It exposes the knowledge-base tools over stdio (one implicit
// session) and over HTTP, where a session registry maps Mcp-Session-Id
// values to per-session server instances carrying their own credentials.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
