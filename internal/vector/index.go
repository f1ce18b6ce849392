package vector

import "sort"

// Hit is one nearest-neighbor result: the position of a vector in the index
// and its squared Euclidean distance from the query.
type Hit struct {
	Position int
	Distance float32
}

// Index is a flat, exhaustive Euclidean-distance index. It is built once and
// read-only afterwards, so it is safe for concurrent searches.
type Index struct {
	Dimension int
	Vectors   [][]float32
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.Vectors)
}

// Search returns up to k nearest vectors in ascending-distance order. Ties
// break on position so that repeated searches are deterministic.
func (ix *Index) Search(query []float32, k int) []Hit {
	if ix.Len() == 0 || k <= 0 || len(query) != ix.Dimension {
		return nil
	}

	hits := make([]Hit, 0, len(ix.Vectors))
	for i, vec := range ix.Vectors {
		hits = append(hits, Hit{Position: i, Distance: squaredL2(query, vec)})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Position < hits[b].Position
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
