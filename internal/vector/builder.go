package vector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/embedding"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// ErrEmptyCorpus is returned when there is nothing to index. Callers should
// skip the build and report index absence rather than treat it as fatal.
var ErrEmptyCorpus = errors.New("document corpus is empty")

// BuildIndex embeds every document in one batch pass and constructs a flat
// Euclidean index over the result. Vector i corresponds to documents[i]; that
// pairing is the permanent position-to-document mapping.
func BuildIndex(ctx context.Context, documents []string, embedder embedding.Embedder) (*Index, error) {
	if len(documents) == 0 {
		return nil, ErrEmptyCorpus
	}

	logger.Info("Embedding corpus", zap.Int("documents", len(documents)))

	vectors, err := embedder.EmbedBatch(ctx, documents)
	if err != nil {
		return nil, fmt.Errorf("failed to embed corpus: %w", err)
	}
	if len(vectors) != len(documents) {
		return nil, fmt.Errorf("embedding count mismatch: got %d vectors for %d documents", len(vectors), len(documents))
	}

	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vec), dim)
		}
	}

	logger.Info("Index built",
		zap.Int("vectors", len(vectors)),
		zap.Int("dimension", dim),
	)

	return &Index{Dimension: dim, Vectors: vectors}, nil
}
