package vector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/youssefmaimouni/can2025-chat/internal/embedding"
	"github.com/youssefmaimouni/can2025-chat/pkg/logger"
)

// Retriever answers semantic queries against a loaded index. The index and
// document list are read-only after construction, so one Retriever serves
// concurrent requests.
type Retriever struct {
	embedder  embedding.Embedder
	index     *Index
	documents []string
	topK      int
}

func NewRetriever(embedder embedding.Embedder, index *Index, documents []string, topK int) *Retriever {
	if topK <= 0 {
		topK = 25
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		documents: documents,
		topK:      topK,
	}
}

// Ready reports whether an index is loaded. A non-ready retriever is not an
// error state; it just means the system degrades to structured-only answers.
func (r *Retriever) Ready() bool {
	return r.index.Len() > 0
}

// Search returns up to k documents most similar to the query, best first.
// A missing index yields an empty result, never an error.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]string, error) {
	if !r.Ready() {
		return nil, nil
	}
	if k <= 0 {
		k = r.topK
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits := r.index.Search(queryVec, k)

	results := make([]string, 0, len(hits))
	for _, hit := range hits {
		// An index rebuilt without its document list (or vice versa) could
		// return positions past the end; drop them instead of crashing.
		if hit.Position >= len(r.documents) {
			logger.Warn("Index position out of range, skipping",
				zap.Int("position", hit.Position),
				zap.Int("documents", len(r.documents)),
			)
			continue
		}
		results = append(results, r.documents[hit.Position])
	}

	return results, nil
}
