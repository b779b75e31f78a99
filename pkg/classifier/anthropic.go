package classifier

import (
	"context"
	"errors"
	"fmt"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/apperr"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	apiKey    string
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
}

// NewAnthropicClient forwards opts to the SDK after the API key.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *AnthropicClient {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AnthropicClient{
		apiKey:    apiKey,
		client:    &client,
		model:     anthropic.ModelClaudeHaiku4_5,
		modelName: "claude-4.5-haiku",
	}
}

func (c *AnthropicClient) Name() string {
	return "Anthropic " + c.modelName
}

func (c *AnthropicClient) Classify(ctx context.Context, id, title string) (model.Prediction, error) {
	if c.apiKey == "" {
		return model.Prediction{}, apperr.MissingKey("ANTHROPIC_API_KEY")
	}

	if err := validateTitle(title); err != nil {
		return model.Prediction{}, err
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Headline: " + title)),
		},
	})

	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return model.Prediction{}, &apperr.UpstreamError{Provider: "Anthropic", Status: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return model.Prediction{}, fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return model.Prediction{}, apperr.Malformed("Invalid prediction format from model", "no response from anthropic")
	}

	return parsePrediction([]byte(cleanJSONResponse(resp.Content[0].Text)))
}
