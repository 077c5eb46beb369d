// ABOUTME: OpenAI client for embeddings and text condensation
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for summaries and answers
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guidewell/policyrag/internal/models"
	"github.com/guidewell/policyrag/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
}

// Client wraps the OpenAI API with retry logic. It serves as both the
// embedding gateway and the generation gateway; nothing else in the process
// talks to OpenAI.
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewClient creates a new OpenAI client with the given API key using default configuration
func NewClient(apiKey string) (*Client, error) {
	return NewClientWithConfig(DefaultConfig(apiKey))
}

// NewClientWithConfig creates a new OpenAI client with custom configuration
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:         openai.NewClient(config.APIKey),
		chatModel:      config.ChatModel,
		embeddingModel: openai.EmbeddingModel(config.EmbeddingModel),
		timeout:        timeout,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
	}, nil
}

// Embed generates an embedding vector for text. Transient failures are
// retried with backoff; over-limit input surfaces models.ErrInputTooLong
// without retrying, since the caller must re-chunk.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var embedding []float64

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			return classifyEmbeddingError(err)
		}
		if len(resp.Data) == 0 {
			return errors.New("no embeddings returned")
		}

		embedding32 := resp.Data[0].Embedding
		embedding = make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrInputTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingUnavailable, err)
	}

	return embedding, nil
}

// Summarize condenses a group of related texts into one summary.
func (c *Client) Summarize(ctx context.Context, texts []string) (string, error) {
	systemPrompt := `You are a policy documentation summarizer. Given related policy content, produce a well-structured summary that:
1. Begins with a clear overview
2. Identifies main topics and key concepts
3. Includes key steps or procedures if present
4. Notes important definitions or terms
5. Preserves relationships between sections

Return only the summary text.`

	userPrompt := strings.Join(texts, "\n\n")
	return c.complete(ctx, systemPrompt, userPrompt, 0.3)
}

// Answer synthesizes a natural-language answer from retrieved context.
func (c *Client) Answer(ctx context.Context, query string, contextTexts []string) (string, error) {
	systemPrompt := `You are a policy assistant. Answer the question using ONLY the provided policy excerpts. If the excerpts do not contain the answer, say so. Cite the excerpts you relied on by their number.`

	var sb strings.Builder
	for i, text := range contextTexts {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, text)
	}
	sb.WriteString("Question: " + query)

	return c.complete(ctx, systemPrompt, sb.String(), 0.2)
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	var content string

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: temperature,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}

		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	return content, nil
}

// classifyEmbeddingError separates over-limit input (terminal, caller must
// re-chunk) from transient API failures.
func classifyEmbeddingError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 400 && strings.Contains(strings.ToLower(apiErr.Message), "maximum context length") {
			return util.NonRetryable(models.ErrInputTooLong)
		}
	}
	return err
}
