package classifier

import (
	"context"
	"errors"
	"fmt"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/apperr"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIClient struct {
	apiKey    string
	client    *openai.Client
	model     openai.ChatModel
	modelName string
}

// NewOpenAIClient forwards opts to the SDK after the API key.
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) *OpenAIClient {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIClient{
		apiKey:    apiKey,
		client:    &client,
		model:     openai.ChatModelGPT4oMini,
		modelName: "gpt-4o-mini",
	}
}

func (c *OpenAIClient) Name() string {
	return "OpenAI " + c.modelName
}

func (c *OpenAIClient) Classify(ctx context.Context, id, title string) (model.Prediction, error) {
	if c.apiKey == "" {
		return model.Prediction{}, apperr.MissingKey("OPENAI_API_KEY")
	}

	if err := validateTitle(title); err != nil {
		return model.Prediction{}, err
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Headline: " + title),
		},
	})

	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return model.Prediction{}, &apperr.UpstreamError{Provider: "OpenAI", Status: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return model.Prediction{}, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return model.Prediction{}, apperr.Malformed("Invalid prediction format from model", "no response from openai")
	}

	return parsePrediction([]byte(cleanJSONResponse(resp.Choices[0].Message.Content)))
}
