package embedding

import "context"

// Embedder maps free text to fixed-dimension dense vectors. Implementations
// must be safe for concurrent use; the same model must be used for indexing
// and for query-time embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelInfo() string
}
