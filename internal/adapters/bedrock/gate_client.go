package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
	"github.com/karnsiree/subscription-radar/internal/utils"
)

// GateClient is an implementation of the GateClient interface using Amazon Bedrock
type GateClient struct {
	client         *bedrockruntime.Client
	modelID        string
	maxTokens      int
	temperature    float32
	topP           float32
	maxSnippetSize int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
	promptFormat   string
}

// NewGateClient creates a new Bedrock gate client
func NewGateClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxSnippetSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GateClient {
	return &GateClient{
		client:         client,
		modelID:        modelID,
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *GateClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *GateClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}

// IsSubscription asks the model whether the email is subscription-related
func (c *GateClient) IsSubscription(ctx context.Context, email *core.Email) (bool, error) {
	snippet := c.textProcessor.ProcessText(email.Snippet, c.maxSnippetSize)
	prompt := fmt.Sprintf(c.promptFormat, email.From, email.Subject, snippet)

	// Create the request based on the model
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}

	if err != nil {
		return false, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return false, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	// Parse the response based on the model
	var answer string

	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return false, fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		answer = claudeResp.Completion
	} else if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return false, fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return false, fmt.Errorf("empty response from Titan model")
		}
		answer = titanResp.Results[0].OutputText
	} else {
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
			return false, fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			answer = genericResp.Output
		case genericResp.Text != "":
			answer = genericResp.Text
		case genericResp.Response != "":
			answer = genericResp.Response
		default:
			answer = string(resp.Body)
		}
	}

	answer = strings.ToUpper(strings.TrimSpace(answer))

	c.logger.Debug("Gate answer",
		zap.String("sender", email.From),
		zap.String("answer", answer),
		zap.String("model", c.modelID))

	return answer == "YES", nil
}
