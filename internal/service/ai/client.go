package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"voicewidget/internal/config"
	"voicewidget/internal/model/chat"
)

// ErrEmptyCompletion signals that the upstream answered successfully but
// carried no assistant text. Kept distinct from transport errors so the
// gateway can log the two fault kinds separately.
var ErrEmptyCompletion = errors.New("upstream returned empty completion")

// Client calls the external completion service (OpenRouter's OpenAI-compatible
// chat completions API) with a full ordered turn history and returns the
// single assistant-authored reply.
type Client struct {
	api   *openai.Client
	model string
	cfg   config.AIConfig
}

// NewClient builds a completion client from configuration.
func NewClient(cfg config.AIConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("completion credentials missing: set OPENROUTER_API_KEY")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
		cfg:   cfg,
	}, nil
}

// Complete sends the ordered turn list upstream and returns the assistant
// text of the first choice. Transport and API failures come back wrapped;
// a 2xx with blank content comes back as ErrEmptyCompletion.
func (c *Client) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("turn history is empty")
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: convertTurns(turns),
	}
	if c.cfg.Temperature != nil {
		req.Temperature = float32(*c.cfg.Temperature)
	}
	if c.cfg.MaxTokens != nil {
		req.MaxTokens = *c.cfg.MaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// convertTurns maps the session history onto the wire message format. Turns
// with structured parts become MultiContent messages so image data URIs reach
// the model.
func convertTurns(turns []chat.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))

	for _, turn := range turns {
		msg := openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		}

		if len(turn.Parts) > 0 {
			content := make([]openai.ChatMessagePart, 0, len(turn.Parts))
			for _, part := range turn.Parts {
				switch part.Type {
				case chat.PartTypeImageURL:
					content = append(content, openai.ChatMessagePart{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: part.ImageURL},
					})
				default:
					content = append(content, openai.ChatMessagePart{
						Type: openai.ChatMessagePartTypeText,
						Text: part.Text,
					})
				}
			}
			msg.MultiContent = content
			msg.Content = ""
		}

		messages = append(messages, msg)
	}

	return messages
}
