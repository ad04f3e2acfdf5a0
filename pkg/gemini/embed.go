package gemini

import (
	"context"

	"github.com/papercomputeco/geminiweb/pkg/llm"
)

// EmbedText returns the embedding of text. Length limits are left to the
// service.
func (c *Client) EmbedText(ctx context.Context, text string) (llm.EmbeddingResult, error) {
	model := c.config.EmbeddingModel
	req := embedRequest{
		Model:   "models/" + model,
		Content: &content{Parts: []*part{{Text: text}}},
	}

	var resp embedResponse
	if err := c.post(ctx, OpEmbedText, model, "embedContent", req, &resp); err != nil {
		return llm.EmbeddingResult{}, err
	}

	return llm.EmbeddingResult{Model: model, Values: resp.Embedding.Values}, nil
}
