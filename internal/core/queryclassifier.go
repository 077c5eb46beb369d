// ABOUTME: QueryClassifier detects query intent, products, and topic category
// ABOUTME: Vocabulary-driven product matching with token-level typo tolerance
package core

import (
	"sort"
	"strings"
	"unicode"

	"github.com/guidewell/policyrag/internal/models"
)

var comparisonCues = []string{
	"compare", "compared", "comparison", "versus", "vs", "difference between",
	"differences between", "which is better",
}

var procedureQueryCues = []string{
	"how do i", "how do we", "how to", "steps to", "steps for", "step by step",
	"process for", "process to", "procedure for", "walk me through",
}

// topicBuckets map a topic category to its trigger phrases. Evaluated in
// topicOrder; the first bucket with a hit wins.
var topicBuckets = map[string][]string{
	"requirements": {"requirement", "require", "must", "minimum", "maximum",
		"limit", "allow", "allowed", "permitted", "restriction"},
	"eligibility": {"eligible", "eligibility", "qualify", "qualifies",
		"qualification"},
	"procedures": {"how do i", "how do we", "how to", "steps", "process",
		"procedure", "submit", "workflow"},
	"definitions": {"what is a", "what is an", "what does", "definition",
		"defined", "meaning of"},
}

var topicOrder = []string{"requirements", "eligibility", "procedures", "definitions"}

// fuzzyMinLen is the shortest token eligible for edit-distance matching.
// Short product codes like "va" must match exactly or they would swallow
// unrelated two-letter words.
const fuzzyMinLen = 5

// QueryClassifier maps free-text queries to a retrieval strategy hint. It is
// pure and deterministic: the same query always yields the same
// classification.
type QueryClassifier struct {
	vocab map[string][]string
	codes []string // sorted for deterministic iteration
}

// NewQueryClassifier creates a classifier over the given product vocabulary
// (product code -> lowercase aliases).
func NewQueryClassifier(vocab map[string][]string) *QueryClassifier {
	codes := make([]string, 0, len(vocab))
	for code := range vocab {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return &QueryClassifier{vocab: vocab, codes: codes}
}

// Classify analyzes a query and returns its type, detected products, topic
// category, and an intent confidence estimate.
func (qc *QueryClassifier) Classify(query string) models.QueryClassification {
	norm := normalizeQuery(query)
	products := qc.detectProducts(norm)
	topic := detectTopic(norm)

	queryType := models.QueryGeneral
	cueMatched := false
	switch {
	case len(products) >= 2:
		queryType = models.QueryComparison
		cueMatched = containsAnyPhrase(norm, comparisonCues)
	case containsAnyPhrase(norm, procedureQueryCues):
		queryType = models.QueryProcedure
		cueMatched = true
	case len(products) == 1:
		queryType = models.QueryProductSpecific
		cueMatched = true
	}

	return models.QueryClassification{
		Type:             queryType,
		Products:         products,
		TopicCategory:    topic,
		IntentConfidence: intentConfidence(queryType, cueMatched, len(products)),
	}
}

// detectProducts scans for vocabulary aliases, exact first and then
// edit-distance-1 on longer tokens. Products are returned in order of first
// appearance in the query.
func (qc *QueryClassifier) detectProducts(norm string) []string {
	type hit struct {
		code string
		pos  int
	}
	var hits []hit

	tokens := strings.Fields(norm)
	for _, code := range qc.codes {
		pos := -1
		for _, alias := range qc.vocab[code] {
			needle := " " + strings.TrimSpace(strings.ToLower(alias)) + " "
			if idx := strings.Index(norm, needle); idx >= 0 && (pos < 0 || idx < pos) {
				pos = idx
			}
		}
		if pos < 0 {
			pos = qc.fuzzyPosition(code, tokens, norm)
		}
		if pos >= 0 {
			hits = append(hits, hit{code, pos})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].code < hits[j].code
	})

	products := make([]string, 0, len(hits))
	for _, h := range hits {
		products = append(products, h.code)
	}
	return products
}

// fuzzyPosition matches single-word aliases against query tokens within one
// edit, returning the byte offset of the matched token or -1.
func (qc *QueryClassifier) fuzzyPosition(code string, tokens []string, norm string) int {
	for _, alias := range qc.vocab[code] {
		alias = strings.ToLower(alias)
		if len(alias) < fuzzyMinLen || strings.ContainsRune(alias, ' ') {
			continue
		}
		for _, token := range tokens {
			if len(token) < fuzzyMinLen {
				continue
			}
			if editDistance(token, alias) <= 1 {
				return strings.Index(norm, " "+token+" ")
			}
		}
	}
	return -1
}

func detectTopic(norm string) string {
	for _, topic := range topicOrder {
		if containsAnyPhrase(norm, topicBuckets[topic]) {
			return topic
		}
	}
	return "general"
}

// intentConfidence is a coarse self-assessment: explicit cues and detected
// products raise it, a bare general query stays low.
func intentConfidence(queryType models.QueryType, cueMatched bool, productCount int) float64 {
	confidence := 0.4
	if cueMatched {
		confidence += 0.3
	}
	boost := 0.15 * float64(productCount)
	if boost > 0.3 {
		boost = 0.3
	}
	confidence += boost
	if queryType == models.QueryGeneral {
		confidence = 0.4
	}
	return clamp01(confidence)
}

// normalizeQuery lowercases and collapses punctuation so phrase matching can
// rely on single-space word boundaries. The result is space-padded.
func normalizeQuery(query string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(query) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return " " + strings.Join(strings.Fields(sb.String()), " ") + " "
}

func containsAnyPhrase(norm string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(norm, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// editDistance is the Levenshtein distance between two short strings.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
