package vector

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// stubEmbedder produces small deterministic vectors so nearest-neighbor
// ordering is predictable in tests.
type stubEmbedder struct {
	vectors map[string][]float32
	dim     int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec, ok := s.vectors[text]
	if !ok {
		return nil, errors.New("unknown text: " + text)
	}
	return vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int    { return s.dim }
func (s *stubEmbedder) ModelInfo() string { return "stub-embedder" }

func testIndex() *Index {
	return &Index{
		Dimension: 2,
		Vectors: [][]float32{
			{0, 0},
			{1, 0},
			{0, 3},
			{1, 1},
		},
	}
}

func TestSearchAscendingDistance(t *testing.T) {
	hits := testIndex().Search([]float32{0, 0}, 4)

	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.Position
	}
	if !reflect.DeepEqual(positions, []int{0, 1, 3, 2}) {
		t.Fatalf("got order %v, want [0 1 3 2]", positions)
	}

	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Fatalf("distances not ascending: %v", hits)
		}
	}
}

func TestSearchTieBreaksOnPosition(t *testing.T) {
	ix := &Index{
		Dimension: 1,
		Vectors:   [][]float32{{1}, {-1}, {1}},
	}

	hits := ix.Search([]float32{0}, 3)
	positions := []int{hits[0].Position, hits[1].Position, hits[2].Position}
	if !reflect.DeepEqual(positions, []int{0, 1, 2}) {
		t.Fatalf("equal distances should keep position order, got %v", positions)
	}
}

func TestSearchClampsK(t *testing.T) {
	hits := testIndex().Search([]float32{0, 0}, 100)
	if len(hits) != 4 {
		t.Fatalf("got %d hits, want 4", len(hits))
	}
}

func TestSearchEdgeCases(t *testing.T) {
	if hits := (&Index{}).Search([]float32{0, 0}, 5); hits != nil {
		t.Fatalf("empty index should yield no hits, got %v", hits)
	}

	var nilIndex *Index
	if hits := nilIndex.Search([]float32{0, 0}, 5); hits != nil {
		t.Fatalf("nil index should yield no hits, got %v", hits)
	}

	if hits := testIndex().Search([]float32{0, 0, 0}, 5); hits != nil {
		t.Fatalf("dimension mismatch should yield no hits, got %v", hits)
	}

	if hits := testIndex().Search([]float32{0, 0}, 0); hits != nil {
		t.Fatalf("k=0 should yield no hits, got %v", hits)
	}
}

func TestBuildIndexEmptyCorpus(t *testing.T) {
	emb := &stubEmbedder{dim: 2}
	if _, err := BuildIndex(context.Background(), nil, emb); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("got %v, want ErrEmptyCorpus", err)
	}
}

func TestBuildIndexIdempotent(t *testing.T) {
	emb := &stubEmbedder{
		dim: 2,
		vectors: map[string][]float32{
			"doc a": {0, 1},
			"doc b": {2, 2},
			"doc c": {0.5, 1},
			"query": {0, 0.9},
		},
	}
	docs := []string{"doc a", "doc b", "doc c"}

	first, err := BuildIndex(context.Background(), docs, emb)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	second, err := BuildIndex(context.Background(), docs, emb)
	if err != nil {
		t.Fatalf("BuildIndex (rebuild): %v", err)
	}

	query, _ := emb.Embed(context.Background(), "query")
	if !reflect.DeepEqual(first.Search(query, 3), second.Search(query, 3)) {
		t.Fatal("rebuilding from identical input should give identical search results")
	}
}

func TestRetrieverSearch(t *testing.T) {
	emb := &stubEmbedder{
		dim: 2,
		vectors: map[string][]float32{
			"coach of Zambia": {0, 1},
		},
	}
	docs := []string{"far away", "Coach of Zambia in Group A: Avram Grant", "middling"}
	ix := &Index{
		Dimension: 2,
		Vectors:   [][]float32{{5, 5}, {0, 1.1}, {1, 1}},
	}

	results, err := NewRetriever(emb, ix, docs, 25).Search(context.Background(), "coach of Zambia", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0] != "Coach of Zambia in Group A: Avram Grant" {
		t.Fatalf("best result should be the coach document, got %q", results[0])
	}
}

func TestRetrieverEmptyIndexReturnsEmpty(t *testing.T) {
	emb := &stubEmbedder{dim: 2}
	r := NewRetriever(emb, nil, nil, 25)

	results, err := r.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("missing index must not be an error, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("missing index must yield empty results, got %v", results)
	}
}

func TestRetrieverDropsOutOfRangePositions(t *testing.T) {
	emb := &stubEmbedder{
		dim:     2,
		vectors: map[string][]float32{"q": {0, 0}},
	}
	// Index with more vectors than documents, as after a non-atomic rebuild.
	ix := &Index{
		Dimension: 2,
		Vectors:   [][]float32{{0, 1}, {0, 0.5}, {0, 0.1}},
	}
	docs := []string{"only document"}

	results, err := NewRetriever(emb, ix, docs, 25).Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0] != "only document" {
		t.Fatalf("out-of-range positions must be dropped, got %v", results)
	}
}
