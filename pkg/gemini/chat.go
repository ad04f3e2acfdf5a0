package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/geminiweb/pkg/llm"
	"github.com/papercomputeco/geminiweb/pkg/logger"
)

// Conversation is the handle of a multi-turn chat. The REST API is stateless,
// so the handle carries the contents exchanged so far and sends them with
// every message. A Conversation is not safe for concurrent use.
type Conversation struct {
	model     string
	createdAt time.Time
	contents  []*content
}

// Model returns the model the conversation talks to.
func (c *Conversation) Model() string {
	return c.model
}

// CreatedAt returns when the conversation was started.
func (c *Conversation) CreatedAt() time.Time {
	return c.createdAt
}

// Len returns the number of remote contents (user and model) in the conversation.
func (c *Conversation) Len() int {
	return len(c.contents)
}

// StartChat creates a conversation with an empty history.
func (c *Client) StartChat(ctx context.Context) (*Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, &llm.RemoteServiceError{Op: OpStartChat, Err: err}
	}

	conv := &Conversation{
		model:     c.config.ChatModel,
		createdAt: time.Now(),
	}
	c.logger.Debug("started chat", zap.String("model", conv.model))
	return conv, nil
}

// SendMessage sends text as the next user message of conv and returns the
// model's reply as an assistant Turn. conv is only extended when the reply
// arrives, so a failed call leaves it unchanged.
func (c *Client) SendMessage(ctx context.Context, conv *Conversation, text string) (llm.Turn, error) {
	if conv == nil {
		return llm.Turn{}, &llm.InvalidStateError{Reason: "no conversation to send the message to"}
	}

	user := textContent(roleUser, text)
	contents := make([]*content, 0, len(conv.contents)+1)
	contents = append(contents, conv.contents...)
	contents = append(contents, user)

	role, reply, err := c.generateReply(ctx, OpSendMessage, conv.model, contents)
	if err != nil {
		return llm.Turn{}, err
	}

	turn := llm.Turn{Role: TranslateRole(role), Text: reply}
	if turn.Role != llm.RoleAssistant {
		return llm.Turn{}, &llm.RemoteServiceError{Op: OpSendMessage, Err: fmt.Errorf("reply has role %q", role)}
	}

	conv.contents = append(contents, textContent(role, reply))

	c.logger.Debug("chat reply",
		zap.Int("history", len(conv.contents)),
		zap.String("content_preview", logger.Truncate(reply, 100)),
	)
	return turn, nil
}

// TranslateRole maps a remote role name to the local one: the service calls
// the assistant "model".
func TranslateRole(role string) llm.Role {
	if role == roleModel {
		return llm.RoleAssistant
	}
	return llm.Role(role)
}
