package domain

// RetrievalTier names the stage of the retrieval cascade that produced a result set.
type RetrievalTier string

const (
	RetrievalTierSemantic RetrievalTier = "semantic"
	RetrievalTierKeyword  RetrievalTier = "keyword"
	RetrievalTierRelaxed  RetrievalTier = "relaxed"
	// RetrievalTierNone means nothing relevant was found. It is a valid outcome, not an error.
	RetrievalTierNone RetrievalTier = "none"
)

// RetrievalResult is a scored chunk with its resolved citation label.
type RetrievalResult struct {
	ChunkID string
	ItemID  string
	Content string
	Source  string
	Score   float64
}

// Citation links an excerpt of an answer back to the item it came from.
type Citation struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	ItemID  string `json:"item_id"`
}

// AnswerResult is the structured reply to a question.
type AnswerResult struct {
	Answer        string
	Citations     []Citation
	Degraded      bool
	LowConfidence bool
	Tier          RetrievalTier
}

// NoRelevantInformationAnswer is returned when retrieval finds nothing.
const NoRelevantInformationAnswer = "I couldn't find any relevant information in your saved notes. Try adding some content first!"

// CitationsFromResults maps retrieval results 1:1 into citations.
func CitationsFromResults(results []RetrievalResult) []Citation {
	citations := make([]Citation, 0, len(results))
	for _, r := range results {
		citations = append(citations, Citation{
			Content: r.Content,
			Source:  r.Source,
			ItemID:  r.ItemID,
		})
	}
	return citations
}
