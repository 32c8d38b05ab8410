package service

import (
	"testing"

	"github.com/cloo-solutions/inbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(chunkID, itemID, content, title string) ScoringCandidate {
	return ScoringCandidate{
		Chunk: &domain.Chunk{ID: chunkID, ItemID: itemID, Content: content},
		Item:  &domain.Item{ID: itemID, Title: title, Source: domain.NoteSource},
	}
}

func TestQueryTerms(t *testing.T) {
	assert.Equal(t, []string{"capital", "france"}, QueryTerms("What is the capital of France?"))
	assert.Empty(t, QueryTerms("what is this"))
	assert.Empty(t, QueryTerms("a an of to"))
	assert.Equal(t, []string{"golang", "golang"}, QueryTerms("golang, GOLANG"))
}

func TestKeywordScorer_Search(t *testing.T) {
	scorer := NewKeywordScorer()

	t.Run("stop words only yields empty", func(t *testing.T) {
		results := scorer.Search("what is the", []ScoringCandidate{candidate("c1", "i1", "what is the thing", "")}, 5)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("counts whole word occurrences", func(t *testing.T) {
		cands := []ScoringCandidate{
			candidate("c1", "i1", "Paris is lovely. Paris in spring.", "Text Note"),
			candidate("c2", "i2", "Parisian cafes", "Text Note"),
		}
		results := scorer.Search("paris", cands, 5)
		require.Len(t, results, 1)
		assert.Equal(t, "c1", results[0].ChunkID)
		assert.Equal(t, float64(200), results[0].Score)
	})

	t.Run("title match outranks identical content", func(t *testing.T) {
		cands := []ScoringCandidate{
			candidate("c1", "i1", "notes about golang", "Random"),
			candidate("c2", "i2", "notes about golang", "Golang tips"),
		}
		results := scorer.Search("golang", cands, 5)
		require.Len(t, results, 2)
		assert.Equal(t, "c2", results[0].ChunkID)
		assert.Equal(t, float64(300), results[0].Score)
		assert.Equal(t, float64(100), results[1].Score)
		assert.Equal(t, "Golang tips", results[0].Source)
	})

	t.Run("title matches by substring", func(t *testing.T) {
		cands := []ScoringCandidate{candidate("c1", "i1", "nothing relevant", "Kubernetes handbook")}
		results := scorer.Search("kube", cands, 5)
		require.Len(t, results, 1)
		assert.Equal(t, float64(200), results[0].Score)
	})

	t.Run("regex metacharacters are literal", func(t *testing.T) {
		cands := []ScoringCandidate{candidate("c1", "i1", "learning c++ today", "")}
		assert.NotPanics(t, func() { scorer.Search("c++ (draft)", cands, 5) })
	})

	t.Run("caps at topK and keeps scan order on ties", func(t *testing.T) {
		var cands []ScoringCandidate
		for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
			cands = append(cands, candidate(id, "i-"+id, "redis cache", ""))
		}
		results := scorer.Search("redis", cands, 3)
		require.Len(t, results, 3)
		assert.Equal(t, "a", results[0].ChunkID)
		assert.Equal(t, "b", results[1].ChunkID)
		assert.Equal(t, "c", results[2].ChunkID)
	})

	t.Run("non-positive topK uses default", func(t *testing.T) {
		var cands []ScoringCandidate
		for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			cands = append(cands, candidate(id, "i-"+id, "postgres", ""))
		}
		assert.Len(t, scorer.Search("postgres", cands, 0), DefaultKeywordTopK)
	})
}
