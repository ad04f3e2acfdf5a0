package llm

// Options contains model inference parameters. Nil fields are left to the
// service defaults.
type Options struct {
	// Sampling parameters
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)
	TopP        *float64 `json:"topP,omitempty"`        // Nucleus sampling threshold
	TopK        *int     `json:"topK,omitempty"`        // Top-k sampling

	// Length parameters
	MaxOutputTokens *int `json:"maxOutputTokens,omitempty"` // Max tokens to generate

	// Stop sequences
	StopSequences []string `json:"stopSequences,omitempty"` // Stop generation at these sequences
}

// IsZero reports whether no parameter is set.
func (o *Options) IsZero() bool {
	return o == nil || (o.Temperature == nil && o.TopP == nil && o.TopK == nil &&
		o.MaxOutputTokens == nil && len(o.StopSequences) == 0)
}
