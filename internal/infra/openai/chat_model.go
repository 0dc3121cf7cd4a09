// Package openai answers tutor questions with an OpenAI-compatible chat model.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"tulu-service/internal/domain"
	"tulu-service/internal/tutor"
)

// DefaultModel is the model the tutor is tuned for.
const DefaultModel = "gpt-4o"

// ErrEmptyAnswer is returned when the model replies with no content.
var ErrEmptyAnswer = errors.New("model returned no answer")

// Config selects the endpoint and model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ChatModel implements app.ChatModel.
type ChatModel struct {
	client *goopenai.Client
	model  string
}

// NewChatModel builds a chat model. Keys shorter than ten characters are
// treated as unset.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if len(strings.TrimSpace(cfg.APIKey)) < 10 {
		return nil, fmt.Errorf("openai API key is required")
	}
	config := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &ChatModel{client: goopenai.NewClientWithConfig(config), model: model}, nil
}

func (m *ChatModel) Answer(ctx context.Context, history []domain.ChatExchange, question string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    m.model,
		Messages: buildMessages(history, question),
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
		}
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyAnswer
	}
	return resp.Choices[0].Message.Content, nil
}

// Model reports the model id in use.
func (m *ChatModel) Model() string { return m.model }

func buildMessages(history []domain.ChatExchange, question string) []goopenai.ChatCompletionMessage {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2+2*len(history))
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleSystem,
		Content: tutor.SystemPrompt,
	})
	for _, ex := range history {
		messages = append(messages,
			goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: ex.Question},
			goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: ex.Answer},
		)
	}
	return append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: question,
	})
}
