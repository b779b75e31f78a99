package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/apperr"
	"time"
)

// defaultInferenceURL serves ProsusAI/finbert, the model the headline
// labels were trained against.
const defaultInferenceURL = "https://router.huggingface.co/hf-inference/models/ProsusAI/finbert"

type HuggingFaceClient struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

func NewHuggingFaceClient(token, endpoint string, timeout time.Duration) *HuggingFaceClient {
	if endpoint == "" {
		endpoint = defaultInferenceURL
	}
	return &HuggingFaceClient{
		token:      token,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HuggingFaceClient) Name() string {
	return "Hugging Face Inference"
}

func (c *HuggingFaceClient) Classify(ctx context.Context, id, title string) (model.Prediction, error) {
	if c.token == "" {
		return model.Prediction{}, apperr.Config(
			"HUGGING_FACE_TOKEN is not set",
			"Please create a .env file with HUGGING_FACE_TOKEN=your_token_here",
		)
	}

	if err := validateTitle(title); err != nil {
		return model.Prediction{}, err
	}

	payload, err := json.Marshal(map[string]any{
		"inputs":     title,
		"parameters": map[string]any{},
	})
	if err != nil {
		return model.Prediction{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.Prediction{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Prediction{}, &apperr.UpstreamError{Provider: c.Name(), Status: resp.StatusCode, Body: string(body)}
	}

	prediction, err := parsePrediction(body)
	if err != nil {
		return model.Prediction{}, err
	}

	slog.Debug("headline classified", "article_id", id, "label", prediction.Label, "score", prediction.Score)
	return prediction, nil
}
