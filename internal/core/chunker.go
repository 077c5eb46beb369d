// ABOUTME: AdaptiveChunker splits cleaned content into semantically bounded chunks
// ABOUTME: Primary spans tile the document exactly; overlap is the only duplication
package core

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/guidewell/policyrag/internal/models"
)

// charsPerToken is the flat estimate used against the embedding token
// ceiling. 4 chars per token tracks the OpenAI tokenizers closely enough for
// a bound that the embedding gateway re-checks anyway.
const charsPerToken = 4

// ChunkerConfig bounds chunk geometry.
type ChunkerConfig struct {
	// Overlap is the number of characters shared with the previous chunk.
	Overlap int
	// MinSize is the smallest standalone chunk; smaller spans merge into a
	// neighbor.
	MinSize int
	// MaxSize is the hard character bound before a boundary is forced.
	MaxSize int
	// MaxTokens bounds estimated tokens independently of MaxSize.
	MaxTokens int
}

// DefaultChunkerConfig returns the reference configuration.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{Overlap: 50, MinSize: 100, MaxSize: 1500, MaxTokens: 1500}
}

func (c ChunkerConfig) validate() error {
	if c.Overlap < 0 {
		return fmt.Errorf("overlap must be >= 0, got %d", c.Overlap)
	}
	if c.MinSize <= 0 {
		return fmt.Errorf("minSize must be positive, got %d", c.MinSize)
	}
	if c.MaxSize <= c.MinSize {
		return fmt.Errorf("maxSize (%d) must exceed minSize (%d)", c.MaxSize, c.MinSize)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("maxTokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// effectiveMax is the binding size bound: both the character ceiling and the
// token ceiling must hold.
func (c ChunkerConfig) effectiveMax() int {
	tokenChars := c.MaxTokens * charsPerToken
	if tokenChars < c.MaxSize {
		return tokenChars
	}
	return c.MaxSize
}

// Chunker produces the chunk sequence for a document. Chunking is
// restartable: the same document and config always yield the same sequence.
type Chunker struct {
	classifier *Classifier
	cfg        ChunkerConfig
}

// NewChunker creates a Chunker with the given classifier and config.
func NewChunker(classifier *Classifier, cfg ChunkerConfig) (*Chunker, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid chunker config: %w", err)
	}
	return &Chunker{classifier: classifier, cfg: cfg}, nil
}

// span is a half-open primary range [start, end) in the document content.
type span struct {
	start, end int
}

// Chunk splits the document's cleaned content. Concatenating the chunks'
// primary spans reconstructs the content exactly.
func (ck *Chunker) Chunk(doc models.Document) ([]models.Chunk, error) {
	content := doc.Content
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	spans := ck.buildSpans(content)
	spans = ck.mergeSmallSpans(content, spans)

	chunks := make([]models.Chunk, 0, len(spans))
	for i, sp := range spans {
		textStart := sp.start
		if i > 0 && ck.cfg.Overlap > 0 {
			textStart = sp.start - ck.cfg.Overlap
			if textStart < 0 {
				textStart = 0
			}
			// Never start the overlap mid-rune.
			for textStart > 0 && !utf8.RuneStart(content[textStart]) {
				textStart--
			}
		}

		primary := content[sp.start:sp.end]
		chunks = append(chunks, models.Chunk{
			ChunkID: fmt.Sprintf("%s:%d", doc.RootID, i),
			RootID:  doc.RootID,
			Seq:     i,
			Text:    content[textStart:sp.end],
			Start:   sp.start,
			End:     sp.end,
			Metadata: models.ChunkMetadata{
				ComponentPath: doc.Path.String(),
				Products:      doc.Products,
				ContentType:   doc.ContentType,
				SectionType:   ck.classifier.ClassifySection(primary, ""),
				TopicCategory: doc.TopicCategory,
			},
		})
	}

	return chunks, nil
}

// buildSpans scans boundary candidates and closes each span at the last
// boundary that fits the size bounds, force-splitting when none does.
func (ck *Chunker) buildSpans(content string) []span {
	boundaries := ck.boundaryCandidates(content)
	effMax := ck.cfg.effectiveMax()

	var spans []span
	start := 0
	for start < len(content) {
		limit := start + effMax
		if limit >= len(content) {
			spans = append(spans, span{start, len(content)})
			break
		}

		end := lastBoundaryWithin(boundaries, start, limit)
		if end > start && !ck.boundaryKeepsMinimum(boundaries, content, start, end) {
			end = 0
		}
		if end <= start {
			end = forceCut(content, start, limit)
		}
		spans = append(spans, span{start, end})
		start = end
	}
	return spans
}

// boundaryKeepsMinimum reports whether cutting at end leaves both the current
// span and the span that follows at or above MinSize. With sparse boundaries
// the best cut can strand a sub-minimum span that no neighbor merge can
// absorb without breaking the size ceiling; skipping the boundary in favor of
// a forced cut keeps every mid-document span within bounds, so only the
// final fragment can ever come up short.
func (ck *Chunker) boundaryKeepsMinimum(boundaries []int, content string, start, end int) bool {
	if end-start < ck.cfg.MinSize {
		return false
	}
	nextLimit := end + ck.cfg.effectiveMax()
	if nextLimit >= len(content) {
		// The next span runs to the end of the document; a short final
		// fragment merges backward instead.
		return true
	}
	next := lastBoundaryWithin(boundaries, end, nextLimit)
	return next <= end || next-end >= ck.cfg.MinSize
}

// boundaryCandidates returns sorted cut positions: sentence ends, paragraph
// breaks, and section markers from the classifier.
func (ck *Chunker) boundaryCandidates(content string) []int {
	seen := make(map[int]bool)
	var out []int
	add := func(pos int) {
		if pos > 0 && pos < len(content) && !seen[pos] {
			seen[pos] = true
			out = append(out, pos)
		}
	}

	for i := 0; i+1 < len(content); i++ {
		switch content[i] {
		case '.', '!', '?':
			if content[i+1] == ' ' || content[i+1] == '\n' {
				add(i + 2)
			}
		case '\n':
			if content[i+1] == '\n' {
				add(i + 2)
			}
		}
	}

	for _, pos := range ck.classifier.SectionMarkers(content) {
		add(pos)
	}

	sort.Ints(out)
	return out
}

// lastBoundaryWithin returns the largest boundary b with start < b <= limit,
// or 0 when there is none.
func lastBoundaryWithin(boundaries []int, start, limit int) int {
	idx := sort.SearchInts(boundaries, limit+1) - 1
	if idx < 0 || boundaries[idx] <= start {
		return 0
	}
	return boundaries[idx]
}

// forceCut splits at the last whitespace before limit, falling back to a
// rune-aligned hard cut so no rune is ever split.
func forceCut(content string, start, limit int) int {
	for i := limit; i > start+1; i-- {
		if content[i-1] == ' ' || content[i-1] == '\n' {
			return i
		}
	}
	cut := limit
	for cut > start+1 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return cut
}

// mergeSmallSpans folds sub-minimum spans into a neighbor. buildSpans avoids
// stranding sub-minimum spans mid-document, so this mainly absorbs the final
// fragment, which always merges backward, even past the ceiling by up to
// MinSize.
func (ck *Chunker) mergeSmallSpans(content string, spans []span) []span {
	if len(spans) < 2 {
		return spans
	}
	effMax := ck.cfg.effectiveMax()

	var merged []span
	for i := 0; i < len(spans); i++ {
		sp := spans[i]
		size := sp.end - sp.start
		if size >= ck.cfg.MinSize || len(merged) == 0 {
			merged = append(merged, sp)
			continue
		}

		prev := &merged[len(merged)-1]
		isLast := i == len(spans)-1
		combined := sp.end - prev.start
		if isLast || combined <= effMax {
			prev.end = sp.end
		} else {
			merged = append(merged, sp)
		}
	}

	// A sub-minimum opening span has no predecessor; fold it forward.
	if len(merged) > 1 && merged[0].end-merged[0].start < ck.cfg.MinSize {
		if merged[1].end-merged[0].start <= effMax {
			merged[1].start = merged[0].start
			merged = merged[1:]
		}
	}
	return merged
}
