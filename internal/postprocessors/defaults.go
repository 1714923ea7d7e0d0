package postprocessors

import (
	"github.com/kbridge/kbridge/internal/core/ports/driven"
	"github.com/kbridge/kbridge/internal/postprocessors/chunker"
)

// NewDefaultRegistry returns a registry with all built-in processors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("chunker", buildChunker)
	return r
}

// FromConfig builds the chunking pipeline from user configuration.
// Supported keys are chunker.chunk_words and chunker.overlap_words;
// unset or zero values fall back to the chunker defaults.
func FromConfig(cfg driven.ConfigStore) (driven.PostProcessor, error) {
	reg := NewDefaultRegistry()
	proc, err := reg.Build("chunker", map[string]any{
		"chunk_words":   cfg.GetInt("chunker.chunk_words"),
		"overlap_words": cfg.GetInt("chunker.overlap_words"),
	})
	if err != nil {
		return nil, err
	}
	return NewPipeline(proc), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported keys:
//   - chunk_words (int): words per chunk
//   - overlap_words (int): overlapping words between consecutive chunks
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if n := intFromConfig(cfg, "chunk_words"); n > 0 {
		opts = append(opts, chunker.WithChunkWords(n))
	}
	if n := intFromConfig(cfg, "overlap_words"); n > 0 {
		opts = append(opts, chunker.WithOverlapWords(n))
	}

	return chunker.New(opts...), nil
}

// intFromConfig extracts an int, tolerating the int64 and float64 forms
// TOML and JSON parsing produce.
func intFromConfig(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
