package llm

// EmbeddingResult is the numeric representation of a text returned by the
// embedding model.
type EmbeddingResult struct {
	Model  string    `json:"model"`
	Values []float32 `json:"values"`
}

// Dimensions returns the length of the embedding vector.
func (r EmbeddingResult) Dimensions() int {
	return len(r.Values)
}
