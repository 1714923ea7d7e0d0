package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driving"
)

// UploadInput is the input schema for the upload tools. Exactly one of
// file_path or file_data must be supplied; file_data requires
// original_filename.
type UploadInput struct {
	FilePath         string `json:"file_path,omitempty" jsonschema:"path of the file to upload (server filesystem)"`
	FileData         string `json:"file_data,omitempty" jsonschema:"base64-encoded file content"`
	OriginalFilename string `json:"original_filename,omitempty" jsonschema:"original filename accompanying file_data"`
}

// UploadOutput is the output schema for the upload tools.
type UploadOutput struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
	TotalChunks   int    `json:"total_chunks"`
}

// SearchInput is the input schema for the search_chunks tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"the text to search for"`
	MatchCount *int   `json:"match_count,omitempty" jsonschema:"number of chunks to return (default 5)"`
}

// SearchOutput is the output schema for the search_chunks tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search hit.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Content    string  `json:"content"`
	ChunkIndex int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
}

// GetFilesInput is the (empty) input schema for the get_files tool.
type GetFilesInput struct{}

// FileInfo describes one stored document without its content.
type FileInfo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	CreatedAt   string `json:"created_at"`
}

// FilesOutput is the output schema for the get_files tool.
type FilesOutput struct {
	Files []FileInfo `json:"files"`
	Count int        `json:"count"`
}

// DocumentRefInput identifies a document by exactly one of id or filename.
type DocumentRefInput struct {
	ID       string `json:"id,omitempty" jsonschema:"document id"`
	Filename string `json:"filename,omitempty" jsonschema:"document filename"`
}

// DocumentOutput is the output schema for the get_document tool.
type DocumentOutput struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

// DeleteOutput is the output schema for the delete tools.
type DeleteOutput struct {
	Deleted int `json:"deleted"`
}

// DeleteManyInput is the input schema for the delete_documents tool.
type DeleteManyInput struct {
	DocumentIDs []string `json:"document_ids" jsonschema:"non-empty list of document ids to delete"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_document",
		Description: "Upload a text or PDF document to the knowledge base",
	}, s.handleUploadDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_image",
		Description: "Upload an image to the knowledge base; it is described by a vision model and made searchable",
	}, s.handleUploadImage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_chunks",
		Description: "Search the knowledge base by semantic similarity",
	}, s.handleSearchChunks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_files",
		Description: "List all documents in the knowledge base",
	}, s.handleGetFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Retrieve one document's full content by id or filename",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete one document by id or filename",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_documents",
		Description: "Delete multiple documents by id",
	}, s.handleDeleteDocuments)
}

// errorResult wraps a message in the in-band tool-error shape. Tool-level
// failures never surface as transport errors; the call itself succeeds and
// the payload carries isError.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Error: "+format, args...)},
		},
	}
}

func (in UploadInput) source() (driving.UploadSource, error) {
	src := driving.UploadSource{
		Path:     in.FilePath,
		Filename: in.OriginalFilename,
	}
	if in.FileData != "" {
		data, err := base64.StdEncoding.DecodeString(in.FileData)
		if err != nil {
			return driving.UploadSource{}, fmt.Errorf("decoding file_data: %w", err)
		}
		src.Data = data
	}
	if err := src.Validate(); err != nil {
		return driving.UploadSource{}, err
	}
	return src, nil
}

func (s *Server) handleUploadDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	src, err := input.source()
	if err != nil {
		return errorResult("%v", err), UploadOutput{}, nil
	}

	result, err := s.ports.Document.UploadDocument(ctx, src)
	if err != nil {
		return errorResult("uploading document: %v", err), UploadOutput{}, nil
	}

	return nil, uploadOutput(result), nil
}

func (s *Server) handleUploadImage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	src, err := input.source()
	if err != nil {
		return errorResult("%v", err), UploadOutput{}, nil
	}

	result, err := s.ports.Document.UploadImage(ctx, src)
	if err != nil {
		return errorResult("uploading image: %v", err), UploadOutput{}, nil
	}

	return nil, uploadOutput(result), nil
}

func (s *Server) handleSearchChunks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	// An omitted match_count defaults; an explicit zero or negative is an
	// argument error, not silently coerced.
	matchCount := domain.DefaultMatchCount
	if input.MatchCount != nil {
		matchCount = *input.MatchCount
	}

	matches, err := s.ports.Search.Search(ctx, input.Query, matchCount)
	if err != nil {
		return errorResult("searching: %v", err), SearchOutput{}, nil
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(matches)),
		Count:   len(matches),
	}
	for i, m := range matches {
		output.Results[i] = SearchResultOutput{
			DocumentID: m.DocumentID,
			Filename:   m.Filename,
			Content:    m.Content,
			ChunkIndex: m.ChunkIndex,
			Similarity: m.Similarity,
		}
	}

	return nil, output, nil
}

func (s *Server) handleGetFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetFilesInput,
) (*mcp.CallToolResult, FilesOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return errorResult("listing documents: %v", err), FilesOutput{}, nil
	}

	output := FilesOutput{
		Files: make([]FileInfo, len(docs)),
		Count: len(docs),
	}
	for i, d := range docs {
		output.Files[i] = FileInfo{
			ID:          d.ID,
			Filename:    d.Filename,
			ContentType: d.ContentType,
			CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentRefInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Document.Get(ctx, driving.DocumentRef{ID: input.ID, Filename: input.Filename})
	if err != nil {
		return errorResult("getting document: %v", err), DocumentOutput{}, nil
	}

	return nil, DocumentOutput{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Content:     doc.Content,
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentRefInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	err := s.ports.Document.Delete(ctx, driving.DocumentRef{ID: input.ID, Filename: input.Filename})
	if err != nil {
		return errorResult("deleting document: %v", err), DeleteOutput{}, nil
	}

	return nil, DeleteOutput{Deleted: 1}, nil
}

func (s *Server) handleDeleteDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteManyInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	deleted, err := s.ports.Document.DeleteMany(ctx, input.DocumentIDs)
	if err != nil {
		return errorResult("deleting documents: %v", err), DeleteOutput{}, nil
	}

	return nil, DeleteOutput{Deleted: deleted}, nil
}

func uploadOutput(r *driving.UploadResult) UploadOutput {
	return UploadOutput{
		DocumentID:    r.Document.ID,
		Filename:      r.Document.Filename,
		ChunksCreated: r.ChunksCreated,
		TotalChunks:   r.TotalChunks,
	}
}
