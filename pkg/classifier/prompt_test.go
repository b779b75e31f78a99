package classifier

import (
	"context"
	"errors"
	"testing"
	"tickerpulse/pkg/apperr"

	"github.com/go-playground/assert/v2"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"label":"neutral","score":0.5}`,
			want:  `{"label":"neutral","score":0.5}`,
		},
		{
			name:  "strips json fenced block",
			input: "```json\n{\"label\":\"neutral\"}\n```",
			want:  `{"label":"neutral"}`,
		},
		{
			name:  "strips surrounding prose",
			input: "Here you go: {\"label\":\"positive\",\"score\":0.9} hope that helps",
			want:  `{"label":"positive","score":0.9}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanJSONResponse(tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChatBackendsMissingKey(t *testing.T) {
	backends := []Classifier{NewOpenAIClient(""), NewAnthropicClient("")}

	for _, b := range backends {
		_, err := b.Classify(context.Background(), "a1", "Acme")

		var config *apperr.ConfigError
		assert.Equal(t, true, errors.As(err, &config))
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("bert-local", Credentials{})
	assert.NotEqual(t, nil, err)

	c, err := New("", Credentials{HuggingFaceToken: "x"})
	assert.Equal(t, nil, err)
	assert.Equal(t, "Hugging Face Inference", c.Name())
}
