// Package postprocessors turns document content into chunks ready for
// embedding. Processors compose into a pipeline; the chunker is the only
// built-in today.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessor = (*Pipeline)(nil)

// Pipeline chains PostProcessors and runs them in order. It implements
// PostProcessor itself so a multi-stage pipeline drops in wherever a
// single processor is expected.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline over the given processors, run in order.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Name returns the processor name.
func (p *Pipeline) Name() string {
	return "pipeline"
}

// Process runs the document through every processor in order. The first
// processor typically receives nil chunks and creates them; later ones
// receive and may reshape them.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var err error
	for _, processor := range p.processors {
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}
	return chunks, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
