// Package gemini is the model client adapter: every call the application
// makes to the hosted Gemini models goes through Client. Calls are single,
// blocking HTTP requests; failures are returned as *llm.RemoteServiceError and
// are never retried.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/geminiweb/pkg/llm"
	"github.com/papercomputeco/geminiweb/pkg/logger"
)

// Operation names used in errors, logs and metrics.
const (
	OpStartChat    = "start_chat"
	OpSendMessage  = "send_message"
	OpCaptionImage = "caption_image"
	OpEmbedText    = "embed_text"
	OpAnswer       = "answer_question"
)

const (
	DefaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	DefaultChatModel      = "gemini-1.5-flash"
	DefaultVisionModel    = "gemini-1.5-flash"
	DefaultTextModel      = "gemini-1.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// Config is the model client configuration.
type Config struct {
	// BaseURL of the REST API, without a trailing slash.
	BaseURL string

	// APIKey is sent as the x-goog-api-key header.
	APIKey string

	ChatModel      string
	VisionModel    string
	TextModel      string
	EmbeddingModel string

	// Timeout bounds each HTTP request at the transport. Zero means no limit.
	Timeout time.Duration

	// Options are the generation parameters applied to generateContent calls.
	Options *llm.Options
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.ChatModel == "" {
		c.ChatModel = DefaultChatModel
	}
	if c.VisionModel == "" {
		c.VisionModel = DefaultVisionModel
	}
	if c.TextModel == "" {
		c.TextModel = DefaultTextModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	return c
}

// Client talks to the Gemini REST API.
type Client struct {
	config     Config
	logger     *zap.Logger
	httpClient *http.Client
}

// New creates a new Client.
func New(config Config, logger *zap.Logger) *Client {
	return &Client{
		config: config.withDefaults(),
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

func (c *Client) generate(ctx context.Context, op, model string, contents []*content) (string, error) {
	_, text, err := c.generateReply(ctx, op, model, contents)
	return text, err
}

// generateReply returns the role and text of the first candidate.
func (c *Client) generateReply(ctx context.Context, op, model string, contents []*content) (role, text string, err error) {
	req := generateRequest{Contents: contents}
	if o := c.config.Options; !o.IsZero() {
		req.GenerationConfig = &generationConfig{
			Temperature:     o.Temperature,
			TopP:            o.TopP,
			TopK:            o.TopK,
			MaxOutputTokens: o.MaxOutputTokens,
			StopSequences:   o.StopSequences,
		}
	}

	var resp generateResponse
	if err := c.post(ctx, op, model, "generateContent", req, &resp); err != nil {
		return "", "", err
	}

	text, err = resp.text()
	if err != nil {
		return "", "", &llm.RemoteServiceError{Op: op, Err: err}
	}

	role = resp.Candidates[0].Content.Role
	if role == "" {
		role = roleModel
	}
	return role, text, nil
}

func (r *generateResponse) text() (string, error) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return "", errors.New("response has no candidates")
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		if reason := r.Candidates[0].FinishReason; reason != "" {
			return "", fmt.Errorf("empty response, finish reason %s", reason)
		}
		return "", errors.New("empty response")
	}
	return sb.String(), nil
}

// post sends body to models/{model}:{method} and decodes the response into
// out. Every failure is wrapped in a *llm.RemoteServiceError.
func (c *Client) post(ctx context.Context, op, model, method string, body, out any) (err error) {
	startTime := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		requestsTotal.WithLabelValues(op, outcome).Inc()
		requestDuration.WithLabelValues(op).Observe(time.Since(startTime).Seconds())
	}()

	reqBody, err := json.Marshal(body)
	if err != nil {
		return &llm.RemoteServiceError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:%s", c.config.BaseURL, model, method)
	c.logger.Debug("calling model service",
		zap.String("op", op),
		zap.String("model", model),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return &llm.RemoteServiceError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.config.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("model service request failed", zap.String("op", op), zap.Error(err))
		return &llm.RemoteServiceError{Op: op, Err: fmt.Errorf("do request: %w", err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &llm.RemoteServiceError{Op: op, StatusCode: httpResp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.Error("model service returned error",
			zap.String("op", op),
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", logger.Truncate(string(respBody), 200)),
		)
		return &llm.RemoteServiceError{Op: op, StatusCode: httpResp.StatusCode, Err: errors.New(errorMessage(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &llm.RemoteServiceError{Op: op, StatusCode: httpResp.StatusCode, Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	c.logger.Debug("model service responded",
		zap.String("op", op),
		zap.Duration("duration", time.Since(startTime)),
	)
	return nil
}

func errorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		if apiErr.Error.Status != "" {
			return apiErr.Error.Status + ": " + apiErr.Error.Message
		}
		return apiErr.Error.Message
	}
	return logger.Truncate(string(body), 200)
}
