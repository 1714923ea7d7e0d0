// Package chunker provides a fixed-size word-window chunking processor.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// DefaultChunkWords is the default number of words per chunk.
const DefaultChunkWords = 400

// DefaultOverlapWords is the default number of overlapping words between
// consecutive chunks.
const DefaultOverlapWords = 40

// Processor splits document content into fixed-size word windows.
// It implements the PostProcessor interface.
type Processor struct {
	chunkWords   int
	overlapWords int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkWords sets the chunk size in words.
func WithChunkWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.chunkWords = n
		}
	}
}

// WithOverlapWords sets the overlap between chunks in words.
func WithOverlapWords(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.overlapWords = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkWords:   DefaultChunkWords,
		overlapWords: DefaultOverlapWords,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave forward progress per window.
	if p.overlapWords >= p.chunkWords {
		p.overlapWords = p.chunkWords / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into word-window chunks.
// Input chunks are ignored; this processor creates new chunks from document
// content. Whitespace-only content produces no chunks.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	words := strings.Fields(doc.Content)
	if len(words) == 0 {
		return nil, nil
	}

	step := p.chunkWords - p.overlapWords
	chunks := make([]domain.Chunk, 0, len(words)/step+1)

	index := 0
	for start := 0; start < len(words); start += step {
		end := start + p.chunkWords
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    strings.Join(words[start:end], " "),
			ChunkIndex: index,
			ChunkType:  domain.ContentTypeText,
		})
		index++

		if end == len(words) {
			break
		}
	}

	return chunks, nil
}
