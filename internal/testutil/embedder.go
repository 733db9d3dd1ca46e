package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/beneflow/beneflow/internal/knowledge"
)

// StaticEmbedder is a deterministic TextEmbedder for tests. Identical texts
// embed to identical unit vectors, and texts sharing words land close
// together, so similarity thresholds behave predictably without a model API.
type StaticEmbedder struct {
	Dimension int
}

// NewStaticEmbedder returns a StaticEmbedder producing vectors of the
// production dimension.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{Dimension: knowledge.VectorDimension}
}

// Embed hashes each whitespace-separated token into a bucket and normalizes
// the result to unit length.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.Dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.Dimension)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}
