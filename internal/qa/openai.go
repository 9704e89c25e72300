package qa

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/bull/docqa-server/internal/embedding"
)

// OpenAICompleter implements Completer with the OpenAI chat completions API,
// reusing the client already configured for embeddings.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a completer for the given chat model.
func NewOpenAICompleter(client *embedding.Client, model string) *OpenAICompleter {
	return &OpenAICompleter{
		client: client.Client(),
		model:  model,
	}
}

// Complete sends the prompt as a single user message and returns the
// generated text, capped at maxTokens generated tokens.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
