package service

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cloo-solutions/inbox/internal/domain"
)

const (
	// DefaultKeywordTopK is the keyword scorer's own result cap.
	DefaultKeywordTopK = 5

	contentMatchPoints = 100
	titleMatchPoints   = 200
	minTermLength      = 3
)

var nonWordPattern = regexp.MustCompile(`\W+`)

var stopWords = map[string]struct{}{
	"what": {}, "is": {}, "how": {}, "the": {}, "and": {},
	"was": {}, "for": {}, "who": {}, "where": {}, "when": {},
	"this": {}, "that": {}, "with": {}, "are": {}, "your": {},
}

// ScoringCandidate pairs a chunk with its owning item for scoring and citation.
type ScoringCandidate struct {
	Chunk *domain.Chunk
	Item  *domain.Item
}

func (c ScoringCandidate) result(score float64) domain.RetrievalResult {
	return domain.RetrievalResult{
		ChunkID: c.Chunk.ID,
		ItemID:  c.Chunk.ItemID,
		Content: c.Chunk.Content,
		Source:  c.Item.DisplaySource(),
		Score:   score,
	}
}

// KeywordSearcher ranks candidates lexically.
type KeywordSearcher interface {
	Search(query string, candidates []ScoringCandidate, topK int) []domain.RetrievalResult
}

// KeywordScorer scores whole-word term hits in chunk text and substring hits in item titles.
type KeywordScorer struct{}

// NewKeywordScorer creates a new KeywordScorer
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

// QueryTerms lower-cases and tokenizes query, dropping short tokens and stop words.
func QueryTerms(query string) []string {
	var terms []string
	for _, tok := range nonWordPattern.Split(strings.ToLower(query), -1) {
		if len(tok) < minTermLength {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// Search returns up to topK candidates with a positive score, best first.
// Equal scores keep scan order.
func (s *KeywordScorer) Search(query string, candidates []ScoringCandidate, topK int) []domain.RetrievalResult {
	if topK <= 0 {
		topK = DefaultKeywordTopK
	}

	terms := QueryTerms(query)
	if len(terms) == 0 {
		return []domain.RetrievalResult{}
	}

	patterns := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
	}

	results := make([]domain.RetrievalResult, 0, len(candidates))
	for _, c := range candidates {
		if c.Chunk == nil {
			continue
		}
		content := strings.ToLower(c.Chunk.Content)
		var title string
		if c.Item != nil {
			title = strings.ToLower(c.Item.Title)
		}

		score := 0
		for i, term := range terms {
			score += len(patterns[i].FindAllStringIndex(content, -1)) * contentMatchPoints
			if title != "" && strings.Contains(title, term) {
				score += titleMatchPoints
			}
		}
		if score > 0 {
			results = append(results, c.result(float64(score)))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
