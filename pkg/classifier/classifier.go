// Package classifier labels a single headline as positive, negative or
// neutral using a hosted model.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/apperr"
	"time"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendAnthropic   = "anthropic"
)

type Classifier interface {
	Classify(ctx context.Context, id, title string) (model.Prediction, error)
	Name() string
}

type Credentials struct {
	HuggingFaceToken string
	InferenceURL     string
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	Timeout          time.Duration
}

func New(backend string, creds Credentials) (Classifier, error) {
	timeout := creds.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	switch backend {
	case "", BackendHuggingFace:
		return NewHuggingFaceClient(creds.HuggingFaceToken, creds.InferenceURL, timeout), nil
	case BackendOpenAI:
		return NewOpenAIClient(creds.OpenAIAPIKey, openaioption.WithRequestTimeout(timeout)), nil
	case BackendAnthropic:
		return NewAnthropicClient(creds.AnthropicAPIKey, anthropicoption.WithRequestTimeout(timeout)), nil
	default:
		return nil, fmt.Errorf("unknown model backend %q", backend)
	}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Validation("Title is required", "Please provide a headline to classify")
	}
	return nil
}

// parsePrediction accepts a single {label, score} object or an array of
// them, possibly nested one level, and uses the first candidate.
func parsePrediction(raw []byte) (model.Prediction, error) {
	candidate := bytes.TrimSpace(raw)
	for len(candidate) > 0 && candidate[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(candidate, &list); err != nil {
			return model.Prediction{}, apperr.Malformed("Invalid prediction format from model", string(raw))
		}
		if len(list) == 0 {
			return model.Prediction{}, apperr.Malformed("Invalid prediction format from model", string(raw))
		}
		candidate = bytes.TrimSpace(list[0])
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(candidate, &fields); err != nil || fields == nil {
		return model.Prediction{}, apperr.Malformed("Invalid prediction format from model", string(candidate))
	}

	label, _ := fields["label"].(string)
	score, ok := fields["score"].(float64)
	if label == "" || !ok {
		return model.Prediction{}, apperr.Malformed("Invalid prediction format from model", string(candidate))
	}

	return model.NewPrediction(label, score), nil
}
