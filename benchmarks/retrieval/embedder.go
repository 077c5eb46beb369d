// ABOUTME: Deterministic lexical embedder for offline benchmarks
// ABOUTME: Hashed bag-of-words vectors make cosine similarity track term overlap

package retrieval

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// LexicalDimension is the vector size used by the benchmark embedder.
const LexicalDimension = 256

// LexicalEmbedder maps text to a hashed term-frequency vector. It needs no
// network and is fully deterministic, so benchmark scores are reproducible.
// Cosine similarity over these vectors approximates lexical overlap, which is
// enough to exercise the retrieval path end to end.
type LexicalEmbedder struct{}

// Embed implements the core.Embedder contract.
func (LexicalEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vector := make([]float64, LexicalDimension)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[h.Sum32()%LexicalDimension]++
	}

	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
