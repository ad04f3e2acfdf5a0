package gemini

import "context"

// AnswerQuestion asks the text model a single question with no history.
func (c *Client) AnswerQuestion(ctx context.Context, text string) (string, error) {
	return c.generate(ctx, OpAnswer, c.config.TextModel, []*content{textContent(roleUser, text)})
}
