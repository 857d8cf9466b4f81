package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
	"github.com/karnsiree/subscription-radar/internal/utils"
)

// GateClient is an implementation of the GateClient interface using any
// OpenAI-compatible chat-completions endpoint
type GateClient struct {
	client         *openai.Client
	modelName      string
	maxTokens      int
	temperature    float32
	topP           float32
	maxSnippetSize int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
	promptFormat   string
}

// NewGateClient creates a new OpenAI-compatible gate client
func NewGateClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxSnippetSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GateClient {
	return &GateClient{
		client:         client,
		modelName:      modelName,
		maxTokens:      maxTokens,
		temperature:    temperature,
		topP:           topP,
		maxSnippetSize: maxSnippetSize,
		logger:         logger,
		textProcessor:  textProcessor,
		promptFormat: `You are classifying emails.

Decide if this email is about a paid subscription, billing, renewal, or charge.

Reply ONLY with:
YES or NO

Email:

From: %s
Subject: %s
Body: %s`,
	}
}

// IsSubscription asks the model whether the email is subscription-related.
// Anything other than a well-formed YES answer is a NO.
func (c *GateClient) IsSubscription(ctx context.Context, email *core.Email) (bool, error) {
	snippet := c.textProcessor.ProcessText(email.Snippet, c.maxSnippetSize)
	prompt := fmt.Sprintf(c.promptFormat, email.From, email.Subject, snippet)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return false, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return false, fmt.Errorf("empty response from model %s", c.modelName)
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))

	c.logger.Debug("Gate answer",
		zap.String("sender", email.From),
		zap.String("answer", answer),
		zap.String("model", c.modelName))

	return answer == "YES", nil
}
