package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
	"github.com/karnsiree/subscription-radar/internal/utils"
)

// GateClient is an implementation of the GateClient interface using Google Gemini
type GateClient struct {
	client         *genai.Client
	model          *genai.GenerativeModel
	modelName      string
	maxSnippetSize int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
	promptFormat   string
}

// NewGateClient creates a new Gemini gate client
func NewGateClient(
	client *genai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxSnippetSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GateClient {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GateClient{
		client:         client,
		model:          model,
		modelName:      modelName,
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

// Close closes the Gemini client
func (c *GateClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsSubscription asks the model whether the email is subscription-related
func (c *GateClient) IsSubscription(ctx context.Context, email *core.Email) (bool, error) {
	snippet := c.textProcessor.ProcessText(email.Snippet, c.maxSnippetSize)
	prompt := fmt.Sprintf(c.promptFormat, email.From, email.Subject, snippet)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return false, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return false, fmt.Errorf("empty response from Gemini")
	}

	var answer string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			answer += string(text)
		}
	}
	answer = strings.ToUpper(strings.TrimSpace(answer))

	c.logger.Debug("Gate answer",
		zap.String("sender", email.From),
		zap.String("answer", answer),
		zap.String("model", c.modelName))

	return answer == "YES", nil
}
